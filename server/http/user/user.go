package user

import (
	"net/http"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/http/internal/form"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()

	mux.Get("/", m(GetUsers))
	mux.Post("/", m(Signup))

	// {id} or @me
	mux.Route(`/{id:(\d+|@me)}`, func(r chi.Router) {
		r.Get("/", m(GetUser))
		r.Put("/", m(UpdateUser))   // only @me
		r.Patch("/", m(UpdateUser)) // only @me
		r.Delete("/", m(DeleteUser))

		r.Route("/permission", func(r chi.Router) {
			r.Patch("/", m(PromoteUser))
		})
	})

	return mux
}

func userID(r tx.Request) (int64, error) {
	if r.Param("id") == "@me" {
		if r.Tx.User.IsZero() {
			return 0, canaima.ErrUnauthorized
		}
		return r.Tx.User.ID, nil
	}
	return r.IDParam("id", canaima.ErrUserNotFound)
}

type UsersParams struct {
	Count uint `schema:"c"`
	Page  uint `schema:"p"`
}

func GetUsers(r tx.Request) (interface{}, error) {
	var p UsersParams

	if err := form.Query(r, &p); err != nil {
		return nil, err
	}

	return r.Tx.Users(p.Count, p.Page)
}

func GetUser(r tx.Request) (interface{}, error) {
	id, err := userID(r)
	if err != nil {
		return nil, err
	}

	return r.Tx.UserByID(id)
}

// SignupForm is the body of a sign up request.
type SignupForm struct {
	canaima.UserProfile
	Password string `json:"password" schema:"password"`
}

func Signup(r tx.Request) (interface{}, error) {
	var f SignupForm

	if err := form.Unmarshal(r, &f); err != nil {
		return nil, err
	}

	if f.Password == "" {
		return nil, canaima.ErrMissingField{Field: "password"}
	}

	u, err := r.Tx.Signup(f.UserProfile, f.Password)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to sign up")
	}

	s, err := r.SignIn(*u)
	if err != nil {
		return nil, err
	}

	return tx.Created(s), nil
}

// Authentication is the body of a sign in request.
type Authentication struct {
	Email    string `json:"email"    schema:"email,required"`
	Password string `json:"password" schema:"password,required"`
}

func Signin(r tx.Request) (interface{}, error) {
	var auth Authentication

	if err := form.Unmarshal(r, &auth); err != nil {
		return nil, err
	}

	u, err := r.Tx.Signin(auth.Email, auth.Password)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to sign in")
	}

	return r.SignIn(*u)
}

func UpdateUser(r tx.Request) (interface{}, error) {
	id, err := userID(r)
	if err != nil {
		return nil, err
	}

	var patch canaima.UserPatch

	if err := form.Unmarshal(r, &patch); err != nil {
		return nil, err
	}

	u, err := r.Tx.UpdateUser(id, patch)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to update user")
	}

	return u, nil
}

func DeleteUser(r tx.Request) (interface{}, error) {
	id, err := userID(r)
	if err != nil {
		return nil, err
	}

	return nil, r.Tx.DeleteUser(id)
}

type Promote struct {
	Permission canaima.Permission `json:"permission" schema:"p,required"`
}

func PromoteUser(r tx.Request) (interface{}, error) {
	id, err := userID(r)
	if err != nil {
		return nil, err
	}

	var p Promote

	if err := form.Unmarshal(r, &p); err != nil {
		return nil, err
	}

	return nil, r.Tx.PromoteUser(id, p.Permission)
}
