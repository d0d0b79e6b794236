package footer

import (
	_ "embed"
	"html/template"

	"github.com/cafecanaima/canaima/frontend/frontserver/render"
)

var (
	//go:embed footer.html
	footerHTML string
	//go:embed footer.css
	footerCSS string
)

func init() {
	render.RegisterCSS(footerCSS)
}

// Link is a labeled link target.
type Link struct {
	Label string
	URL   string
}

// QuickLinks are the in-site navigation targets.
var QuickLinks = []Link{
	{"Inicio", "/"},
	{"Productos", "/products"},
	{"Servicios", "/services"},
	{"Contactar", "/contact"},
}

// SocialLinks open in a new browsing context.
var SocialLinks = []Link{
	{"Facebook", "https://www.facebook.com"},
	{"Instagram", "https://www.instagram.com"},
	{"Twitter", "https://www.twitter.com"},
}

const Copyright = "© 2024 Cafe Canaima. Todos los derechos reservados."

var Component = render.Component{
	Template: footerHTML,
	Functions: template.FuncMap{
		"footerQuickLinks":  func() []Link { return QuickLinks },
		"footerSocialLinks": func() []Link { return SocialLinks },
		"footerCopyright":   func() string { return Copyright },
	},
}
