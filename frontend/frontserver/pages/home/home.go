package home

import (
	_ "embed"

	"github.com/cafecanaima/canaima/frontend/frontserver/render"

	// Components
	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/nav"
)

var (
	//go:embed home.html
	homeHTML string
	//go:embed home.css
	homeCSS string
)

func init() {
	render.RegisterCSS(homeCSS)
}

var tmpl = render.BuildPage("home", render.Page{
	Template: homeHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
}

// Render renders the welcome banner. The shared application context is passed
// along but the banner does not depend on it.
func Render(r *render.Request) (render.Render, error) {
	b, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Description: "Descubre nuestros deliciosos productos y disfruta de un café excepcional.",
		ImageURL:    render.AssetURL("img/canaima-banner.svg"),
		Body:        b,
	}, nil
}
