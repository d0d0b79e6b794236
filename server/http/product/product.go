package product

import (
	"net/http"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/http/internal/form"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/go-chi/chi"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()
	mux.Get("/", m(ListProducts))
	mux.Post("/", m(CreateProduct))

	mux.Route("/{id}", func(r chi.Router) {
		r.Get("/", m(GetProduct))
		r.Put("/", m(UpdateProduct))
		r.Delete("/", m(DeleteProduct))

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", m(GetProductIngredients))
			r.Post("/", m(AddProductIngredient))
			r.Delete("/{ingredientID}", m(RemoveProductIngredient))
		})
	})

	return mux
}

func productID(r tx.Request) (int64, error) {
	return r.IDParam("id", canaima.ErrProductNotFound)
}

func ListProducts(r tx.Request) (interface{}, error) {
	return r.Tx.Products()
}

func GetProduct(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	return r.Tx.Product(id)
}

func CreateProduct(r tx.Request) (interface{}, error) {
	var data canaima.ProductData

	if err := form.Unmarshal(r, &data); err != nil {
		return nil, err
	}

	p, err := r.Tx.CreateProduct(data)
	if err != nil {
		return nil, err
	}

	return tx.Created(p), nil
}

func UpdateProduct(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	var data canaima.ProductData

	if err := form.Unmarshal(r, &data); err != nil {
		return nil, err
	}

	return r.Tx.UpdateProduct(id, data)
}

func DeleteProduct(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	return nil, r.Tx.DeleteProduct(id)
}

func GetProductIngredients(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	return r.Tx.ProductIngredients(id)
}

type AddIngredientParams struct {
	IngredientID int64  `json:"ingredient_id" schema:"ingredient_id,required"`
	Quantity     string `json:"quantity"      schema:"quantity"`
}

func AddProductIngredient(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	var p AddIngredientParams

	if err := form.Unmarshal(r, &p); err != nil {
		return nil, err
	}

	if err := r.Tx.AddProductIngredient(id, p.IngredientID, p.Quantity); err != nil {
		return nil, err
	}

	pis, err := r.Tx.ProductIngredients(id)
	if err != nil {
		return nil, err
	}

	return tx.Created(pis), nil
}

func RemoveProductIngredient(r tx.Request) (interface{}, error) {
	id, err := productID(r)
	if err != nil {
		return nil, err
	}

	ingredientID, err := r.IDParam("ingredientID", canaima.ErrNotInProduct)
	if err != nil {
		return nil, err
	}

	return nil, r.Tx.RemoveProductIngredient(id, ingredientID)
}
