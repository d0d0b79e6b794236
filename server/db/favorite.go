package db

import (
	"github.com/cafecanaima/canaima/canaima"
	"github.com/pkg/errors"
)

// Favorites returns the current user's favorites.
func (d *Transaction) Favorites() ([]canaima.Favorite, error) {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return nil, err
	}

	var favs = []canaima.Favorite{}

	err := d.SelectContext(d.ctx, &favs,
		"SELECT id, userid, productid, orderid FROM favorites WHERE userid = ? ORDER BY id ASC",
		d.User.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query favorites")
	}

	return favs, nil
}

// AddFavorite marks a product, an order or both as the current user's
// favorite. Orders must belong to the current user.
func (d *Transaction) AddFavorite(req canaima.FavoriteRequest) (*canaima.Favorite, error) {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ProductID != nil {
		if err := d.productExists(*req.ProductID); err != nil {
			return nil, err
		}
	}

	if req.OrderID != nil {
		o, err := d.Order(*req.OrderID)
		if err != nil {
			return nil, err
		}
		// Admins may see other orders, but favorites stay personal.
		if o.CustomerID != d.User.ID {
			return nil, canaima.ErrOrderNotFound
		}
	}

	// SQLite considers NULLs distinct in UNIQUE constraints, so duplicates are
	// checked by hand.
	var exists bool

	err := d.GetContext(d.ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE userid = ?
			AND productid IS ? AND orderid IS ?)`,
		d.User.ID, req.ProductID, req.OrderID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to check favorites")
	}
	if exists {
		return nil, canaima.ErrFavoriteExists
	}

	var f = canaima.Favorite{
		ID:        favoriteIDGen.Generate().Int64(),
		UserID:    d.User.ID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
	}

	_, err = d.ExecContext(d.ctx,
		"INSERT INTO favorites VALUES (?, ?, ?, ?)",
		f.ID, f.UserID, f.ProductID, f.OrderID,
	)
	if err != nil {
		if errIsConstraint(err) {
			return nil, canaima.ErrFavoriteExists
		}
		return nil, errors.Wrap(err, "Failed to insert favorite")
	}

	return &f, nil
}

// DeleteFavorite removes one of the current user's favorites.
func (d *Transaction) DeleteFavorite(id int64) error {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return err
	}

	c, err := d.execChanged("DELETE FROM favorites WHERE id = ? AND userid = ?", id, d.User.ID)
	if err != nil {
		return errors.Wrap(err, "Failed to delete favorite")
	}
	if !c {
		return canaima.ErrFavoriteNotFound
	}

	return nil
}
