package products

import (
	_ "embed"
	"time"

	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/cafecanaima/canaima/frontend/frontserver/render"
	"github.com/cafecanaima/canaima/frontend/frontserver/state"

	// Components
	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/nav"
)

var (
	//go:embed products.html
	productsHTML string
	//go:embed products.css
	productsCSS string
)

func init() {
	render.RegisterCSS(productsCSS)
}

var tmpl = render.BuildPage("products", render.Page{
	Template: productsHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Store state.Store
	// Outdated is true if the last refresh failed and older products are
	// shown.
	Outdated bool
}

// Renderer renders the catalogue, refreshing the store through its actions if
// it is older than maxAge.
func Renderer(maxAge time.Duration) render.Renderer {
	return func(r *render.Request) (render.Render, error) {
		if r.App.Stale(maxAge) {
			err := r.App.Actions().LoadProducts(r.Context())
			if err != nil && r.App.Store().LoadedAt.IsZero() {
				return render.Empty, httperr.Wrap(err, 503, "Failed to load the catalogue")
			}
		}

		s := r.App.Store()

		b, err := tmpl.Render(renderCtx{
			CommonCtx: r.CommonCtx,
			Store:     s,
			Outdated:  s.Err != nil,
		})
		if err != nil {
			return render.Empty, err
		}

		return render.Render{
			Title:       "Productos",
			Description: "Nuestras bebidas y comidas.",
			Body:        b,
		}, nil
	}
}
