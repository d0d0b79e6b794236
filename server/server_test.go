package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/cafecanaima/canaima/canaima"
	"github.com/go-test/deep"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	canaima.HashCost = bcrypt.MinCost
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T, opts ...func(*Config)) (*App, Config) {
	t.Helper()

	cfg := NewConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "canaima.db")
	cfg.JWTSecret = testSecret
	cfg.RateLimits = false

	for _, opt := range opts {
		opt(&cfg)
	}

	admin := canaima.UserProfile{
		Name:      "admin",
		FullName:  "Admin Canaima",
		Telephone: "+58 412-0000000",
		Address:   "Ciudad Bolívar",
		Email:     "admin@canaima.test",
	}

	if err := CreateAdmin(cfg, admin, []byte("adminpassword")); err != nil {
		t.Fatal("Failed to create admin:", err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal("Failed to create app:", err)
	}
	t.Cleanup(func() { a.Close() })

	return a, cfg
}

type testClient struct {
	t     *testing.T
	h     http.Handler
	token string
}

// do sends v as JSON and decodes the response into out if out is not nil.
func (c testClient) do(method, path string, v, out interface{}, code int) {
	c.t.Helper()

	w := c.raw(method, path, v)

	if w.Code != code {
		c.t.Fatalf("%s %s: expected status %d, got %d: %s",
			method, path, code, w.Code, w.Body.String())
	}

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: failed to decode: %v", method, path, err)
		}
	}
}

func (c testClient) raw(method, path string, v interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var body bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&body).Encode(v); err != nil {
			c.t.Fatal("Failed to encode body:", err)
		}
	}

	r := httptest.NewRequest(method, path, &body)
	r.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, r)

	return w
}

func (c testClient) as(token string) testClient {
	c.token = token
	return c
}

func TestAPI(t *testing.T) {
	a, _ := newTestApp(t)
	guest := testClient{t: t, h: a}

	var admin canaima.SignedIn
	guest.do("POST", "/signin", map[string]string{
		"email":    "ADMIN@canaima.test ",
		"password": "adminpassword",
	}, &admin, 200)

	if admin.User.Permission != canaima.PermissionAdmin {
		t.Fatal("Signed in admin has permission", admin.User.Permission)
	}

	adm := guest.as(admin.Token)

	var harina canaima.Ingredient
	adm.do("POST", "/ingredients", canaima.IngredientData{Name: "Harina"}, &harina, 201)

	var arepa canaima.Product
	adm.do("POST", "/products", canaima.ProductData{
		Name:        "Arepa",
		Description: "Arepa de queso",
		Price:       2.5,
	}, &arepa, 201)

	adm.do("POST", fmt.Sprintf("/products/%d/ingredients", arepa.ID), map[string]interface{}{
		"ingredient_id": harina.ID,
		"quantity":      "200g",
	}, nil, 201)

	// Adding the same ingredient twice conflicts.
	adm.do("POST", fmt.Sprintf("/products/%d/ingredients", arepa.ID), map[string]interface{}{
		"ingredient_id": harina.ID,
	}, nil, 409)

	var products []canaima.Product
	guest.do("GET", "/products", nil, &products, 200)

	arepa.Ingredients = []canaima.ProductIngredient{{
		ProductID:      arepa.ID,
		IngredientID:   harina.ID,
		IngredientName: "Harina",
		Quantity:       "200g",
	}}

	if diff := deep.Equal([]canaima.Product{arepa}, products); diff != nil {
		t.Fatal("Catalog mismatch:", diff)
	}

	t.Run("customer", func(t *testing.T) {
		guest := guest
		guest.t = t

		var maria canaima.SignedIn
		guest.do("POST", "/users", map[string]string{
			"name":      "maria",
			"full_name": "María Rodríguez",
			"telephone": "+58 414-1234567",
			"address":   "Puerto Ordaz",
			"email":     "maria@canaima.test",
			"password":  "mariapassword",
		}, &maria, 201)

		c := guest.as(maria.Token)

		var me canaima.UserPart
		c.do("GET", "/users/@me", nil, &me, 200)

		if diff := deep.Equal(maria.User, me); diff != nil {
			t.Fatal("Me mismatch:", diff)
		}

		// Customers cannot touch the catalog.
		c.do("POST", "/products", canaima.ProductData{Name: "Cachapa", Price: 3}, nil, 403)
		c.do("DELETE", fmt.Sprintf("/products/%d", arepa.ID), nil, nil, 403)

		var o canaima.Order
		c.do("POST", "/orders", canaima.OrderRequest{
			Items: []canaima.OrderRequestItem{{ProductID: arepa.ID, Quantity: 4}},
		}, &o, 201)

		if o.Total != 10 || o.QuantityItems != 4 {
			t.Fatalf("Unexpected order: %#v", o)
		}

		var got canaima.Order
		c.do("GET", fmt.Sprintf("/orders/%d", o.ID), nil, &got, 200)

		if diff := deep.Equal(o, got); diff != nil {
			t.Fatal("Order mismatch:", diff)
		}

		var orders []canaima.Order
		adm.do("GET", fmt.Sprintf("/orders?customer=%d", me.ID), nil, &orders, 200)

		if len(orders) != 1 || orders[0].ID != o.ID {
			t.Fatalf("Unexpected orders for customer: %#v", orders)
		}

		// Customers can't list the admin's orders.
		c.do("GET", fmt.Sprintf("/orders?customer=%d", admin.User.ID), nil, nil, 403)

		var fav canaima.Favorite
		c.do("POST", "/favorites", canaima.FavoriteRequest{ProductID: &arepa.ID}, &fav, 201)
		c.do("POST", "/favorites", canaima.FavoriteRequest{ProductID: &arepa.ID}, nil, 409)

		var favs []canaima.Favorite
		c.do("GET", "/favorites", nil, &favs, 200)

		if diff := deep.Equal([]canaima.Favorite{fav}, favs); diff != nil {
			t.Fatal("Favorites mismatch:", diff)
		}

		c.do("DELETE", fmt.Sprintf("/favorites/%d", fav.ID), nil, nil, 204)
		c.do("DELETE", fmt.Sprintf("/favorites/%d", fav.ID), nil, nil, 404)

		c.do("PATCH", "/users/@me", map[string]string{"address": "San Félix"}, &me, 200)
		if me.Address != "San Félix" {
			t.Fatal("Address not updated:", me.Address)
		}

		// Only admins promote.
		c.do("PATCH", fmt.Sprintf("/users/%d/permission", me.ID),
			map[string]interface{}{"permission": canaima.PermissionAdmin}, nil, 403)
	})

	t.Run("guest", func(t *testing.T) {
		guest := guest
		guest.t = t

		guest.do("GET", "/orders", nil, nil, 401)
		guest.do("GET", "/users/@me", nil, nil, 401)
		guest.do("GET", "/products/garbage", nil, nil, 404)
		guest.do("GET", "/nonexistent", nil, nil, 404)
	})

	t.Run("bad token", func(t *testing.T) {
		var resp canaima.ErrResponse
		testClient{t: t, h: a, token: "garbage"}.do("GET", "/products", nil, &resp, 401)

		if resp.Error == "" {
			t.Fatal("Missing error message")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		var resp canaima.ErrResponse
		testClient{t: t, h: a}.do("POST", "/signin", map[string]string{
			"email":    "admin@canaima.test",
			"password": "wrongpassword",
		}, &resp, 401)

		if !strings.Contains(resp.Error, "invalid email or password") {
			t.Fatal("Unexpected error:", resp.Error)
		}
	})
}

func TestBodyLimit(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *Config) {
		cfg.MaxBodySize = datasize.KB
	})

	var resp canaima.ErrResponse
	testClient{t: t, h: a}.do("POST", "/signin", map[string]string{
		"email":    "admin@canaima.test",
		"password": strings.Repeat("a", 2048),
	}, &resp, 413)

	if !strings.Contains(resp.Error, "body too large") {
		t.Fatal("Unexpected error:", resp.Error)
	}
}

func TestRateLimit(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *Config) {
		cfg.RateLimits = true
	})

	c := testClient{t: t, h: a}
	body := map[string]string{"email": "admin@canaima.test", "password": "wrongpassword"}

	// The sign in group allows 2 requests per second per address.
	var limited bool
	for i := 0; i < 10 && !limited; i++ {
		w := c.raw("POST", "/signin", body)
		limited = w.Code == http.StatusTooManyRequests
	}

	if !limited {
		t.Fatal("Sign in was never rate limited")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected an error on a missing JWT secret")
	}

	cfg.JWTSecret = testSecret

	if err := cfg.Validate(); err != nil {
		t.Fatal("Unexpected error:", err)
	}
}
