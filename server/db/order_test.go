package db

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/pkg/errors"
)

func TestOrder(t *testing.T) {
	d := newTestDatabase(t)
	admin := testNewAdmin(t, d)
	carlos := testNewCustomer(t, d, "carlos")
	elena := testNewCustomer(t, d, "elena")

	var cafe, torta *canaima.Product

	testAcquire(t, d, admin.ID, func(tx *Transaction) {
		cafe = testNewProduct(t, tx, "Café", 1.5)
		torta = testNewProduct(t, tx, "Torta", 4)
	})

	var order *canaima.Order

	t.Run("Create", func(t *testing.T) {
		testAcquire(t, d, carlos.ID, func(tx *Transaction) {
			var err error

			order, err = tx.CreateOrder(canaima.OrderRequest{
				Items: []canaima.OrderRequestItem{
					{ProductID: cafe.ID, Quantity: 2},
					{ProductID: torta.ID, Quantity: 1},
				},
			})
			if err != nil {
				t.Fatal("Failed to create order:", err)
			}
		})

		if order.Total != 7 {
			t.Fatal("Unexpected total:", order.Total)
		}
		if order.QuantityItems != 3 {
			t.Fatal("Unexpected item count:", order.QuantityItems)
		}
		if order.Date != time.Now().Format(canaima.DateLayout) {
			t.Fatal("Unexpected date:", order.Date)
		}
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		testAcquire(t, d, carlos.ID, func(tx *Transaction) {
			_, err := tx.CreateOrder(canaima.OrderRequest{})
			if !errors.Is(err, canaima.ErrEmptyOrder) {
				t.Fatal("Unexpected error on empty order:", err)
			}

			_, err = tx.CreateOrder(canaima.OrderRequest{
				Items: []canaima.OrderRequestItem{{ProductID: 1, Quantity: 1}},
			})
			if !errors.Is(err, canaima.ErrProductNotFound) {
				t.Fatal("Unexpected error on unknown product:", err)
			}

			_, err = tx.CreateOrder(canaima.OrderRequest{
				Items: []canaima.OrderRequestItem{{ProductID: cafe.ID, Quantity: 0}},
			})
			if !errors.Is(err, canaima.ErrInvalidQuantity) {
				t.Fatal("Unexpected error on zero quantity:", err)
			}

			_, err = tx.CreateOrder(canaima.OrderRequest{
				Items: []canaima.OrderRequestItem{
					{ProductID: cafe.ID, Quantity: math.MaxInt64},
					{ProductID: torta.ID, Quantity: 2},
				},
			})
			if !errors.Is(err, canaima.ErrQuantityTooLarge) {
				t.Fatal("Unexpected error on huge quantity:", err)
			}
		})
	})

	t.Run("Guest", func(t *testing.T) {
		err := d.Acquire(context.Background(), 0, func(tx *Transaction) error {
			_, err := tx.Orders(0)
			return err
		})
		if !errors.Is(err, canaima.ErrUnauthorized) {
			t.Fatal("Unexpected error listing orders as guest:", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		testAcquire(t, d, carlos.ID, func(tx *Transaction) {
			o, err := tx.Order(order.ID)
			if err != nil {
				t.Fatal("Failed to get order:", err)
			}
			if len(o.Items) != 2 {
				t.Fatal("Unexpected order items:", o.Items)
			}
		})

		testAcquire(t, d, elena.ID, func(tx *Transaction) {
			if _, err := tx.Order(order.ID); !errors.Is(err, canaima.ErrOrderNotFound) {
				t.Fatal("Unexpected error getting someone else's order:", err)
			}

			if _, err := tx.Orders(carlos.ID); !errors.Is(err, canaima.ErrActionNotPermitted) {
				t.Fatal("Unexpected error listing someone else's orders:", err)
			}
		})

		testAcquire(t, d, admin.ID, func(tx *Transaction) {
			orders, err := tx.Orders(carlos.ID)
			if err != nil {
				t.Fatal("Failed to list orders as admin:", err)
			}
			if len(orders) != 1 || len(orders[0].Items) != 2 {
				t.Fatal("Unexpected orders:", orders)
			}
		})
	})

	t.Run("PriceChangeKeepsTotal", func(t *testing.T) {
		testAcquire(t, d, admin.ID, func(tx *Transaction) {
			_, err := tx.UpdateProduct(cafe.ID, canaima.ProductData{
				Name: "Café", Description: "Café de la casa", Price: 10,
			})
			if err != nil {
				t.Fatal("Failed to update product:", err)
			}
		})

		testAcquire(t, d, carlos.ID, func(tx *Transaction) {
			o, err := tx.Order(order.ID)
			if err != nil {
				t.Fatal("Failed to get order:", err)
			}
			if o.Total != 7 {
				t.Fatal("Order total changed with product price:", o.Total)
			}
		})
	})
}

func TestFavorite(t *testing.T) {
	d := newTestDatabase(t)
	admin := testNewAdmin(t, d)
	u := testNewCustomer(t, d, "sofia")

	var cafe *canaima.Product
	testAcquire(t, d, admin.ID, func(tx *Transaction) {
		cafe = testNewProduct(t, tx, "Café", 1.5)
	})

	var fav *canaima.Favorite

	testAcquire(t, d, u.ID, func(tx *Transaction) {
		var err error

		fav, err = tx.AddFavorite(canaima.FavoriteRequest{ProductID: &cafe.ID})
		if err != nil {
			t.Fatal("Failed to add favorite:", err)
		}

		_, err = tx.AddFavorite(canaima.FavoriteRequest{ProductID: &cafe.ID})
		if !errors.Is(err, canaima.ErrFavoriteExists) {
			t.Fatal("Unexpected error on duplicate favorite:", err)
		}

		_, err = tx.AddFavorite(canaima.FavoriteRequest{})
		if !errors.Is(err, canaima.ErrEmptyFavorite) {
			t.Fatal("Unexpected error on empty favorite:", err)
		}

		favs, err := tx.Favorites()
		if err != nil {
			t.Fatal("Failed to list favorites:", err)
		}
		if len(favs) != 1 || *favs[0].ProductID != cafe.ID || favs[0].OrderID != nil {
			t.Fatal("Unexpected favorites:", favs)
		}
	})

	testAcquire(t, d, admin.ID, func(tx *Transaction) {
		if err := tx.DeleteFavorite(fav.ID); !errors.Is(err, canaima.ErrFavoriteNotFound) {
			t.Fatal("Unexpected error deleting someone else's favorite:", err)
		}
	})

	testAcquire(t, d, u.ID, func(tx *Transaction) {
		if err := tx.DeleteFavorite(fav.ID); err != nil {
			t.Fatal("Failed to delete favorite:", err)
		}
	})
}
