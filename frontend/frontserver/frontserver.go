package frontserver

import (
	"net/http"
	"time"

	"github.com/cafecanaima/canaima/frontend/frontserver/pages/contact"
	"github.com/cafecanaima/canaima/frontend/frontserver/pages/errorpage"
	"github.com/cafecanaima/canaima/frontend/frontserver/pages/home"
	"github.com/cafecanaima/canaima/frontend/frontserver/pages/products"
	"github.com/cafecanaima/canaima/frontend/frontserver/pages/services"
	"github.com/cafecanaima/canaima/frontend/frontserver/render"
	"github.com/cafecanaima/canaima/frontend/frontserver/state"
	"github.com/diamondburned/duration"
	"github.com/pkg/errors"
)

type FrontConfig struct {
	render.Config
	// CatalogMaxAge is how long the products page trusts the cached catalogue.
	CatalogMaxAge string `toml:"catalogMaxAge"`

	catalogMaxAge time.Duration
}

func NewConfig() FrontConfig {
	return FrontConfig{
		Config:        render.NewConfig(),
		CatalogMaxAge: "1m",
	}
}

func (c *FrontConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}

	d, err := duration.ParseDuration(c.CatalogMaxAge)
	if err != nil {
		return errors.Wrap(err, "invalid catalog max age")
	}
	c.catalogMaxAge = time.Duration(d)

	return nil
}

// New creates the front end. The catalog backs the shared application
// context's store.
func New(catalog state.Catalog, cfg FrontConfig) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := render.NewMux(state.New(catalog), cfg.Config)
	r.SetErrorRenderer(errorpage.RenderError)
	r.Get("/", home.Render)
	r.Get("/products", products.Renderer(cfg.catalogMaxAge))
	r.Get("/services", services.Render)
	r.Get("/contact", contact.Render)

	return r, nil
}
