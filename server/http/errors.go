package http

import "github.com/cafecanaima/canaima/canaima/httperr"

var (
	errNotFound         = httperr.New(404, "route not found")
	errMethodNotAllowed = httperr.New(405, "method not allowed")
)
