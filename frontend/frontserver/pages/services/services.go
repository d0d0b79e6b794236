package services

import (
	_ "embed"

	"github.com/cafecanaima/canaima/frontend/frontserver/render"

	// Components
	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/nav"
)

//go:embed services.html
var servicesHTML string

var tmpl = render.BuildPage("services", render.Page{
	Template: servicesHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

// Service is an offering listed on the page.
type Service struct {
	Name        string
	Description string
}

var Services = []Service{
	{"Café de especialidad", "Granos venezolanos tostados en casa y preparados al momento."},
	{"Desayunos", "Arepas, cachapas y empanadas recién hechas todas las mañanas."},
	{"Pedidos para llevar", "Haz tu pedido en línea y retíralo sin hacer fila."},
	{"Eventos", "Reserva nuestro espacio para reuniones y celebraciones."},
}

type renderCtx struct {
	render.CommonCtx
	Services []Service
}

func Render(r *render.Request) (render.Render, error) {
	b, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		Services:  Services,
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Title: "Servicios",
		Body:  b,
	}, nil
}
