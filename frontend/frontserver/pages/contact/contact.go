package contact

import (
	_ "embed"

	"github.com/cafecanaima/canaima/frontend/frontserver/render"

	// Components
	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/nav"
)

//go:embed contact.html
var contactHTML string

var tmpl = render.BuildPage("contact", render.Page{
	Template: contactHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

// Info is the contact information of the café.
type Info struct {
	Address   string
	Telephone string
	Email     string
	Hours     string
}

var CafeInfo = Info{
	Address:   "Paseo Orinoco, Ciudad Bolívar, Venezuela",
	Telephone: "+58 285-6320000",
	Email:     "hola@cafecanaima.com",
	Hours:     "Lunes a sábado, 7:00 a 19:00",
}

type renderCtx struct {
	render.CommonCtx
	Info Info
}

func Render(r *render.Request) (render.Render, error) {
	b, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		Info:      CafeInfo,
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Title: "Contactar",
		Body:  b,
	}, nil
}
