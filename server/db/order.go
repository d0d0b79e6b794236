package db

import (
	"database/sql"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// CreateOrder places an order for the current user. The total is computed from
// the current product prices.
func (d *Transaction) CreateOrder(req canaima.OrderRequest) (*canaima.Order, error) {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var o = canaima.Order{
		ID:         orderIDGen.Generate().Int64(),
		CustomerID: d.User.ID,
		Date:       time.Now().Format(canaima.DateLayout),
		Items:      make([]canaima.OrderItem, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		var price float64

		err := d.GetContext(d.ctx, &price, "SELECT price FROM products WHERE id = ?", item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, canaima.ErrProductNotFound
			}
			return nil, errors.Wrap(err, "Failed to get product price")
		}

		o.QuantityItems += item.Quantity
		o.Total += price * float64(item.Quantity)
		o.Items = append(o.Items, canaima.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	_, err := d.ExecContext(d.ctx,
		"INSERT INTO orders VALUES (?, ?, ?, ?, ?)",
		o.ID, o.CustomerID, o.QuantityItems, o.Date, o.Total,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to insert order")
	}

	for _, item := range o.Items {
		_, err := d.ExecContext(d.ctx,
			"INSERT INTO orderitems VALUES (?, ?, ?, ?)",
			o.ID, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to insert order item")
		}
	}

	return &o, nil
}

// Order returns the order if it belongs to the current user or the current
// user is an admin.
func (d *Transaction) Order(id int64) (*canaima.Order, error) {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return nil, err
	}

	var o canaima.Order

	err := d.GetContext(d.ctx, &o,
		"SELECT id, customer, quantity, date, total FROM orders WHERE id = ?", id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, canaima.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "Failed to get order")
	}

	// Hide the existence of other people's orders.
	if err := d.IsUserOrHasPermission(o.CustomerID, canaima.PermissionAdmin); err != nil {
		return nil, canaima.ErrOrderNotFound
	}

	if err := d.fillOrderItems(&o); err != nil {
		return nil, err
	}

	return &o, nil
}

// Orders returns the orders of the given customer, newest first. A zero
// customer ID means the current user. Only admins can list someone else's
// orders.
func (d *Transaction) Orders(customerID int64) ([]canaima.Order, error) {
	if err := d.HasPermission(canaima.PermissionCustomer); err != nil {
		return nil, err
	}

	if customerID == 0 {
		customerID = d.User.ID
	}

	if err := d.IsUserOrHasPermission(customerID, canaima.PermissionAdmin); err != nil {
		return nil, err
	}

	var orders = []canaima.Order{}

	err := d.SelectContext(d.ctx, &orders,
		`SELECT id, customer, quantity, date, total FROM orders
			WHERE customer = ? ORDER BY id DESC`,
		customerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to query orders")
	}

	if len(orders) == 0 {
		return orders, nil
	}

	var ids = make([]int64, len(orders))
	var index = make(map[int64]int, len(orders))

	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []canaima.OrderItem{}
	}

	items, err := d.orderItems(ids...)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item.OrderItem)
	}

	return orders, nil
}

type orderItem struct {
	OrderID int64 `db:"orderid"`
	canaima.OrderItem
}

func (d *Transaction) fillOrderItems(o *canaima.Order) error {
	items, err := d.orderItems(o.ID)
	if err != nil {
		return err
	}

	o.Items = make([]canaima.OrderItem, len(items))
	for i, item := range items {
		o.Items[i] = item.OrderItem
	}

	return nil
}

func (d *Transaction) orderItems(orderIDs ...int64) ([]orderItem, error) {
	q, args, err := sqlx.In(`
		SELECT orderid, COALESCE(productid, 0) AS productid, quantity, unitprice
		FROM orderitems WHERE orderid IN (?)`,
		orderIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to construct query")
	}

	var items []orderItem

	if err := d.SelectContext(d.ctx, &items, q, args...); err != nil {
		return nil, errors.Wrap(err, "Failed to query order items")
	}

	return items, nil
}
