package ingredient

import (
	"net/http"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/server/http/internal/form"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/go-chi/chi"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()
	mux.Get("/", m(ListIngredients))
	mux.Post("/", m(CreateIngredient))

	mux.Route("/{id}", func(r chi.Router) {
		r.Get("/", m(GetIngredient))
		r.Put("/", m(UpdateIngredient))
		r.Delete("/", m(DeleteIngredient))
	})

	return mux
}

func ingredientID(r tx.Request) (int64, error) {
	return r.IDParam("id", canaima.ErrIngredientNotFound)
}

func ListIngredients(r tx.Request) (interface{}, error) {
	return r.Tx.Ingredients()
}

func GetIngredient(r tx.Request) (interface{}, error) {
	id, err := ingredientID(r)
	if err != nil {
		return nil, err
	}

	return r.Tx.Ingredient(id)
}

func CreateIngredient(r tx.Request) (interface{}, error) {
	var data canaima.IngredientData

	if err := form.Unmarshal(r, &data); err != nil {
		return nil, err
	}

	i, err := r.Tx.CreateIngredient(data)
	if err != nil {
		return nil, err
	}

	return tx.Created(i), nil
}

func UpdateIngredient(r tx.Request) (interface{}, error) {
	id, err := ingredientID(r)
	if err != nil {
		return nil, err
	}

	var data canaima.IngredientData

	if err := form.Unmarshal(r, &data); err != nil {
		return nil, err
	}

	return r.Tx.UpdateIngredient(id, data)
}

func DeleteIngredient(r tx.Request) (interface{}, error) {
	id, err := ingredientID(r)
	if err != nil {
		return nil, err
	}

	return nil, r.Tx.DeleteIngredient(id)
}
