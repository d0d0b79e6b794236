package nav

import (
	_ "embed"
	"html/template"

	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/render"
)

var (
	//go:embed nav.html
	navHTML string
	//go:embed nav.css
	navCSS string
)

func init() {
	render.RegisterCSS(navCSS)
}

// Component expects a render.CommonCtx as its argument.
var Component = render.Component{
	Template: navHTML,
	Functions: template.FuncMap{
		"navLinks": func() []footer.Link { return footer.QuickLinks },
	},
}
