package db

import (
	"database/sql"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Products returns every product sorted by name, each with its ingredients.
func (d *Transaction) Products() ([]canaima.Product, error) {
	var products []canaima.Product

	err := d.SelectContext(d.ctx, &products,
		"SELECT id, name, description, price FROM products ORDER BY name ASC, id ASC",
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query products")
	}

	if len(products) == 0 {
		return []canaima.Product{}, nil
	}

	var ids = make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	pis, err := d.productIngredients(ids...)
	if err != nil {
		return nil, err
	}

	// Map the product IDs to indices for grouping.
	var index = make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
		products[i].Ingredients = []canaima.ProductIngredient{}
	}

	for _, pi := range pis {
		i := index[pi.ProductID]
		products[i].Ingredients = append(products[i].Ingredients, pi)
	}

	return products, nil
}

// Product returns a single product with its ingredients.
func (d *Transaction) Product(id int64) (*canaima.Product, error) {
	var p canaima.Product

	err := d.GetContext(d.ctx, &p,
		"SELECT id, name, description, price FROM products WHERE id = ?", id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, canaima.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "Failed to get product")
	}

	p.Ingredients, err = d.productIngredients(id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (d *Transaction) productExists(id int64) error {
	var exists bool

	err := d.GetContext(d.ctx, &exists, "SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)", id)
	if err != nil {
		return errors.Wrap(err, "Failed to check product")
	}
	if !exists {
		return canaima.ErrProductNotFound
	}

	return nil
}

func (d *Transaction) CreateProduct(data canaima.ProductData) (*canaima.Product, error) {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}

	var p = canaima.Product{
		ID:          productIDGen.Generate().Int64(),
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		Ingredients: []canaima.ProductIngredient{},
	}

	_, err := d.ExecContext(d.ctx,
		"INSERT INTO products VALUES (?, ?, ?, ?)",
		p.ID, p.Name, p.Description, p.Price,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to insert product")
	}

	return &p, nil
}

func (d *Transaction) UpdateProduct(id int64, data canaima.ProductData) (*canaima.Product, error) {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}

	c, err := d.execChanged(
		"UPDATE products SET name = ?, description = ?, price = ? WHERE id = ?",
		data.Name, data.Description, data.Price, id,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to update product")
	}
	if !c {
		return nil, canaima.ErrProductNotFound
	}

	return d.Product(id)
}

func (d *Transaction) DeleteProduct(id int64) error {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return err
	}

	c, err := d.execChanged("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "Failed to delete product")
	}
	if !c {
		return canaima.ErrProductNotFound
	}

	return nil
}

// ProductIngredients returns the ingredients of a product.
func (d *Transaction) ProductIngredients(productID int64) ([]canaima.ProductIngredient, error) {
	if err := d.productExists(productID); err != nil {
		return nil, err
	}

	return d.productIngredients(productID)
}

func (d *Transaction) productIngredients(productIDs ...int64) ([]canaima.ProductIngredient, error) {
	q, args, err := sqlx.In(`
		SELECT pi.productid, pi.ingredientid, i.name AS ingredientname, pi.quantity
		FROM productingredients AS pi
		JOIN ingredients AS i ON i.id = pi.ingredientid
		WHERE pi.productid IN (?)
		ORDER BY i.name ASC`,
		productIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to construct query")
	}

	var pis = []canaima.ProductIngredient{}

	if err := d.SelectContext(d.ctx, &pis, q, args...); err != nil {
		return nil, errors.Wrap(err, "Failed to query product ingredients")
	}

	return pis, nil
}

// AddProductIngredient links the ingredient to the product.
func (d *Transaction) AddProductIngredient(productID, ingredientID int64, quantity string) error {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return err
	}

	if len([]rune(quantity)) > canaima.MaxQuantityLen {
		return canaima.ErrFieldTooLong{Field: "quantity", Max: canaima.MaxQuantityLen}
	}

	if err := d.productExists(productID); err != nil {
		return err
	}

	if _, err := d.Ingredient(ingredientID); err != nil {
		return err
	}

	_, err := d.ExecContext(d.ctx,
		"INSERT INTO productingredients VALUES (?, ?, ?)",
		productID, ingredientID, quantity,
	)
	if err != nil {
		if errIsConstraint(err) {
			return canaima.ErrAlreadyInProduct
		}
		return errors.Wrap(err, "Failed to add ingredient")
	}

	return nil
}

// RemoveProductIngredient unlinks the ingredient from the product.
func (d *Transaction) RemoveProductIngredient(productID, ingredientID int64) error {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return err
	}

	if err := d.productExists(productID); err != nil {
		return err
	}

	c, err := d.execChanged(
		"DELETE FROM productingredients WHERE productid = ? AND ingredientid = ?",
		productID, ingredientID,
	)
	if err != nil {
		return errors.Wrap(err, "Failed to remove ingredient")
	}
	if !c {
		return canaima.ErrNotInProduct
	}

	return nil
}

// Ingredients returns every ingredient sorted by name.
func (d *Transaction) Ingredients() ([]canaima.Ingredient, error) {
	var ingredients = []canaima.Ingredient{}

	err := d.SelectContext(d.ctx, &ingredients,
		"SELECT id, name FROM ingredients ORDER BY name ASC, id ASC",
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query ingredients")
	}

	return ingredients, nil
}

func (d *Transaction) Ingredient(id int64) (*canaima.Ingredient, error) {
	var i canaima.Ingredient

	err := d.GetContext(d.ctx, &i, "SELECT id, name FROM ingredients WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, canaima.ErrIngredientNotFound
		}
		return nil, errors.Wrap(err, "Failed to get ingredient")
	}

	return &i, nil
}

func (d *Transaction) CreateIngredient(data canaima.IngredientData) (*canaima.Ingredient, error) {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}

	var i = canaima.Ingredient{
		ID:   ingredientIDGen.Generate().Int64(),
		Name: data.Name,
	}

	_, err := d.ExecContext(d.ctx, "INSERT INTO ingredients VALUES (?, ?)", i.ID, i.Name)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to insert ingredient")
	}

	return &i, nil
}

func (d *Transaction) UpdateIngredient(id int64, data canaima.IngredientData) (*canaima.Ingredient, error) {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}

	c, err := d.execChanged("UPDATE ingredients SET name = ? WHERE id = ?", data.Name, id)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to update ingredient")
	}
	if !c {
		return nil, canaima.ErrIngredientNotFound
	}

	return &canaima.Ingredient{ID: id, Name: data.Name}, nil
}

func (d *Transaction) DeleteIngredient(id int64) error {
	if err := d.HasPermission(canaima.PermissionAdmin); err != nil {
		return err
	}

	c, err := d.execChanged("DELETE FROM ingredients WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "Failed to delete ingredient")
	}
	if !c {
		return canaima.ErrIngredientNotFound
	}

	return nil
}
