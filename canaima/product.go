package canaima

import (
	"math"
	"strings"

	"github.com/cafecanaima/canaima/canaima/httperr"
)

// Column lengths.
const (
	MaxProductNameLen    = 100
	MaxDescriptionLen    = 100
	MaxIngredientNameLen = 100
	MaxQuantityLen       = 50
)

type Product struct {
	ID          int64   `json:"id"          db:"id"`
	Name        string  `json:"name"        db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price"       db:"price"`
	// Ingredients is queried separately.
	Ingredients []ProductIngredient `json:"ingredients" db:"-"`
}

// ProductData is the writable part of a product.
type ProductData struct {
	Name        string  `json:"name"        schema:"name"`
	Description string  `json:"description" schema:"description"`
	Price       float64 `json:"price"       schema:"price"`
}

func (p *ProductData) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)

	if err := CheckField("name", p.Name, MaxProductNameLen); err != nil {
		return err
	}
	if err := CheckField("description", p.Description, MaxDescriptionLen); err != nil {
		return err
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return ErrInvalidPrice
	}

	return nil
}

type Ingredient struct {
	ID   int64  `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

// IngredientData is the writable part of an ingredient.
type IngredientData struct {
	Name string `json:"name" schema:"name"`
}

func (i *IngredientData) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	return CheckField("name", i.Name, MaxIngredientNameLen)
}

// ProductIngredient links an ingredient to a product.
type ProductIngredient struct {
	ProductID      int64  `json:"product_id"      db:"productid"`
	IngredientID   int64  `json:"ingredient_id"   db:"ingredientid"`
	IngredientName string `json:"ingredient_name" db:"ingredientname"`
	Quantity       string `json:"quantity"        db:"quantity"`
}

var (
	ErrProductNotFound    = httperr.New(404, "product not found")
	ErrIngredientNotFound = httperr.New(404, "ingredient not found")
	ErrNotInProduct       = httperr.New(404, "ingredient not found in product")
	ErrAlreadyInProduct   = httperr.New(409, "ingredient is already in product")
	ErrInvalidPrice       = httperr.New(400, "invalid price")
)
