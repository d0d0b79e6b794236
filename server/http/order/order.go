package order

import (
	"net/http"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/http/internal/form"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/go-chi/chi"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()
	mux.Get("/", m(ListOrders))
	mux.Post("/", m(CreateOrder))
	mux.Get("/{id}", m(GetOrder))
	return mux
}

type ListParams struct {
	Customer int64 `schema:"customer"`
}

func ListOrders(r tx.Request) (interface{}, error) {
	var p ListParams

	if err := form.Query(r, &p); err != nil {
		return nil, err
	}

	return r.Tx.Orders(p.Customer)
}

func GetOrder(r tx.Request) (interface{}, error) {
	id, err := r.IDParam("id", canaima.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	return r.Tx.Order(id)
}

func CreateOrder(r tx.Request) (interface{}, error) {
	var req canaima.OrderRequest

	if err := form.Unmarshal(r, &req); err != nil {
		return nil, err
	}

	o, err := r.Tx.CreateOrder(req)
	if err != nil {
		return nil, err
	}

	return tx.Created(o), nil
}
