package http

import (
	"net/http"

	"github.com/c2h5oh/datasize"
	"github.com/cafecanaima/canaima/server/auth"
	"github.com/cafecanaima/canaima/server/db"
	"github.com/cafecanaima/canaima/server/http/favorite"
	"github.com/cafecanaima/canaima/server/http/ingredient"
	"github.com/cafecanaima/canaima/server/http/internal/limit"
	"github.com/cafecanaima/canaima/server/http/internal/limread"
	mw "github.com/cafecanaima/canaima/server/http/internal/middleware"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/cafecanaima/canaima/server/http/order"
	"github.com/cafecanaima/canaima/server/http/product"
	"github.com/cafecanaima/canaima/server/http/user"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
)

type HTTPConfig struct {
	MaxBodySize datasize.ByteSize `toml:"maxBodySize"`
	// RateLimits enables the per-address rate limiters on the API.
	RateLimits bool `toml:"rateLimits"`
}

func NewConfig() HTTPConfig {
	return HTTPConfig{
		MaxBodySize: 1 * datasize.MB,
		RateLimits:  true,
	}
}

func (c *HTTPConfig) Validate() error {
	if c.MaxBodySize < 1*datasize.KB {
		return errors.New("`maxBodySize' is smaller than 1KB")
	}
	return nil
}

type Routes struct {
	http.Handler
	mw  tx.Middleware
	cfg HTTPConfig
}

func New(db *db.Database, signer *auth.Signer, cfg HTTPConfig) (*Routes, error) {
	mux := chi.NewMux()
	rts := &Routes{
		Handler: mux,
		mw:      tx.NewMiddleware(db, signer),
		cfg:     cfg,
	}

	// Alias the middleware function.
	m := rts.mw.M

	mux.Use(
		middleware.RealIP,
		middleware.Recoverer,
		mw.NoSniff,
		limread.LimitBody(cfg.MaxBodySize),
	)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		tx.RenderError(w, errNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		tx.RenderError(w, errMethodNotAllowed)
	})

	mux.Group(func(mux chi.Router) {
		rts.rateLimit(mux, 2)
		mux.Post("/signin", m(user.Signin))
	})

	mux.Group(func(mux chi.Router) {
		rts.rateLimit(mux, 64)
		mux.Mount("/users", user.Mount(m))
		mux.Mount("/products", product.Mount(m))
		mux.Mount("/ingredients", ingredient.Mount(m))
		mux.Mount("/orders", order.Mount(m))
		mux.Mount("/favorites", favorite.Mount(m))
	})

	return rts, nil
}

func (rts *Routes) rateLimit(mux chi.Router, n float64) {
	if rts.cfg.RateLimits {
		mux.Use(limit.RateLimit(n))
	}
}
