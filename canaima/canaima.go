// Package canaima contains the types shared by the API server, the database
// and the front server.
package canaima

import (
	"math"

	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/pkg/errors"
)

type Permission int8

var ErrInvalidPermission = httperr.New(400, "invalid permission")

const (
	// PermissionGuest is the zero-value of permission, which indicates a
	// request without a token.
	PermissionGuest Permission = iota
	// PermissionCustomer is a registered user. Customers can place orders and
	// keep favorites.
	PermissionCustomer
	// PermissionAdmin manages the catalogue and other users.
	PermissionAdmin
)

func (p Permission) String() string {
	switch p {
	case PermissionGuest:
		return "Guest"
	case PermissionCustomer:
		return "Customer"
	case PermissionAdmin:
		return "Admin"
	default:
		return "???"
	}
}

// IsValid returns true if the permission is one a user account can hold.
func (p Permission) IsValid() bool {
	return p == PermissionCustomer || p == PermissionAdmin
}

// ErrResponse is the JSON body of every failed API call.
type ErrResponse struct {
	Error string `json:"error"`
}

var (
	ErrUnauthorized       = httperr.New(401, "authentication required")
	ErrActionNotPermitted = httperr.New(403, "action not permitted")
	ErrPageCountLimit     = httperr.New(400, "count is over 100 limit")
	ErrPageOutOfRange     = httperr.New(400, "page is out of range")
)

// MaxPageCount is the maximum number of items a paginated listing returns.
const MaxPageCount = 100

// Paginate returns the LIMIT and OFFSET values for the given count and page.
// A zero count means the default of 25.
func Paginate(count, page uint) (limit, offset uint, err error) {
	if count == 0 {
		count = 25
	}
	if count > MaxPageCount {
		return 0, 0, ErrPageCountLimit
	}
	if uint64(page) > math.MaxInt64/uint64(count) {
		return 0, 0, ErrPageOutOfRange
	}
	return count, count * page, nil
}

// ErrMissingField is returned when a required field is empty.
type ErrMissingField struct {
	Field string
}

func (err ErrMissingField) Error() string {
	return "missing field " + err.Field
}

func (err ErrMissingField) StatusCode() int {
	return 400
}

// ErrFieldTooLong is returned when a field exceeds its column length.
type ErrFieldTooLong struct {
	Field string
	Max   int
}

func (err ErrFieldTooLong) Error() string {
	return "field " + err.Field + " is too long"
}

func (err ErrFieldTooLong) StatusCode() int {
	return 400
}

// CheckField verifies that a required field is non-empty and at most max
// runes long.
func CheckField(name, value string, max int) error {
	if value == "" {
		return ErrMissingField{name}
	}
	if len([]rune(value)) > max {
		return ErrFieldTooLong{name, max}
	}
	return nil
}

// IsMissingField returns true if err is an ErrMissingField.
func IsMissingField(err error) bool {
	var m ErrMissingField
	return errors.As(err, &m)
}
