// Package tx wraps API handlers in database transactions bound to the caller's
// token.
package tx

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/cafecanaima/canaima/server/auth"
	"github.com/cafecanaima/canaima/server/db"
	"github.com/go-chi/chi"
)

type Request struct {
	*http.Request
	wr http.ResponseWriter

	Tx     *db.Transaction
	Signer *auth.Signer
}

// Param is a helper function that returns a URL parameter from chi.
func (r Request) Param(s string) string {
	return chi.URLParam(r.Request, s)
}

// IDParam parses the URL parameter as an ID. The given error is returned if
// the parameter is not a valid ID, so that garbage IDs are treated as not
// found.
func (r Request) IDParam(s string, notFound error) (int64, error) {
	i, err := strconv.ParseInt(r.Param(s), 10, 64)
	if err != nil || i <= 0 {
		return 0, notFound
	}
	return i, nil
}

// SignIn issues a token for the given user.
func (r Request) SignIn(u canaima.UserPart) (*canaima.SignedIn, error) {
	t, err := r.Signer.Sign(u)
	if err != nil {
		return nil, err
	}

	return &canaima.SignedIn{User: u, Token: t}, nil
}

// Handler is the function signature for transaction handlers. Render could be
// Renderer.
type Handler = func(Request) (render interface{}, err error)

// Renderer is a possible return type for Handler's render.
type Renderer = func(w http.ResponseWriter) error

// Middlewarer is the interface for the transaction middleware.
type Middlewarer = func(Handler) http.HandlerFunc

type Middleware struct {
	db     *db.Database
	signer *auth.Signer
}

var _ Middlewarer = (Middleware{}).M

func NewMiddleware(db *db.Database, signer *auth.Signer) Middleware {
	return Middleware{db: db, signer: signer}
}

func (m Middleware) M(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID int64

		// A request without a token is a guest. A request with a bad token is
		// rejected instead of silently downgraded.
		if token := auth.TokenFromRequest(r); token != "" {
			c, err := m.signer.Verify(token)
			if err != nil {
				RenderError(w, err)
				return
			}
			userID = c.UserID
		}

		var v interface{}

		err := m.db.Acquire(r.Context(), userID,
			func(tx *db.Transaction) (err error) {
				v, err = h(Request{r, w, tx, m.signer})
				return
			},
		)

		if err != nil {
			RenderError(w, err)
			return
		}

		render(w, v)
	}
}

// Status renders v as JSON with the given status code.
func Status(code int, v interface{}) Renderer {
	return func(w http.ResponseWriter) error {
		writeJSON(w, code, v)
		return nil
	}
}

// Created renders v as JSON with 201 Created.
func Created(v interface{}) Renderer {
	return Status(http.StatusCreated, v)
}

func render(w http.ResponseWriter, v interface{}) {
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if fn, ok := v.(Renderer); ok {
		if err := fn(w); err != nil {
			RenderError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	// Headers must be set before the status code is written.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Encode failed:", err)
	}
}

func RenderWrap(w http.ResponseWriter, err error, code int, wrap string) {
	RenderError(w, httperr.Wrap(err, code, wrap))
}

func RenderError(w http.ResponseWriter, err error) {
	code := httperr.ErrCode(err)

	msg := err.Error()

	// Internal errors may leak details, so they are only logged.
	if code >= 500 {
		log.Println("Internal error:", err)
		msg = http.StatusText(code)
	}

	writeJSON(w, code, canaima.ErrResponse{
		Error: msg,
	})
}
