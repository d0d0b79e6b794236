package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cafecanaima/canaima/canaima"
)

// Signin signs in and keeps the returned token for later requests.
func (c *Client) Signin(ctx context.Context, email, password string) (*canaima.SignedIn, error) {
	var s canaima.SignedIn

	err := c.Post(ctx, "/signin", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}

	c.SetToken(s.Token)
	return &s, nil
}

// Me returns the signed in user.
func (c *Client) Me(ctx context.Context) (*canaima.UserPart, error) {
	var u canaima.UserPart
	if err := c.Get(ctx, "/users/@me", &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Products(ctx context.Context) ([]canaima.Product, error) {
	var p []canaima.Product
	if err := c.Get(ctx, "/products", &p, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// Catalog returns the products. It lets the client back a front end that runs
// apart from the API.
func (c *Client) Catalog(ctx context.Context) ([]canaima.Product, error) {
	return c.Products(ctx)
}

func (c *Client) Product(ctx context.Context, id int64) (*canaima.Product, error) {
	var p canaima.Product
	if err := c.Get(ctx, "/products/"+strconv.FormatInt(id, 10), &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Orders(ctx context.Context) ([]canaima.Order, error) {
	var o []canaima.Order
	if err := c.Get(ctx, "/orders", &o, nil); err != nil {
		return nil, err
	}
	return o, nil
}

// CustomerOrders lists someone else's orders. Only admins can do this.
func (c *Client) CustomerOrders(ctx context.Context, customerID int64) ([]canaima.Order, error) {
	var o []canaima.Order
	v := url.Values{"customer": {strconv.FormatInt(customerID, 10)}}
	if err := c.Get(ctx, "/orders", &o, v); err != nil {
		return nil, err
	}
	return o, nil
}

func (c *Client) CreateOrder(ctx context.Context, req canaima.OrderRequest) (*canaima.Order, error) {
	var o canaima.Order
	if err := c.Post(ctx, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Favorites(ctx context.Context) ([]canaima.Favorite, error) {
	var f []canaima.Favorite
	if err := c.Get(ctx, "/favorites", &f, nil); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Client) AddFavorite(ctx context.Context, req canaima.FavoriteRequest) (*canaima.Favorite, error) {
	var f canaima.Favorite
	if err := c.Post(ctx, "/favorites", req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFavorite(ctx context.Context, id int64) error {
	return c.Delete(ctx, "/favorites/"+strconv.FormatInt(id, 10))
}
