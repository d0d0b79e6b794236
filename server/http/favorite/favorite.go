package favorite

import (
	"net/http"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/http/internal/form"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/go-chi/chi"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()
	mux.Get("/", m(ListFavorites))
	mux.Post("/", m(AddFavorite))
	mux.Delete("/{id}", m(DeleteFavorite))
	return mux
}

func ListFavorites(r tx.Request) (interface{}, error) {
	return r.Tx.Favorites()
}

func AddFavorite(r tx.Request) (interface{}, error) {
	var req canaima.FavoriteRequest

	if err := form.Unmarshal(r, &req); err != nil {
		return nil, err
	}

	f, err := r.Tx.AddFavorite(req)
	if err != nil {
		return nil, err
	}

	return tx.Created(f), nil
}

func DeleteFavorite(r tx.Request) (interface{}, error) {
	id, err := r.IDParam("id", canaima.ErrFavoriteNotFound)
	if err != nil {
		return nil, err
	}

	return nil, r.Tx.DeleteFavorite(id)
}
