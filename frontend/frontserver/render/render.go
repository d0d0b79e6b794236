package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/cafecanaima/canaima/frontend/frontserver/state"
	"github.com/go-chi/chi"
)

// Renderer represents a renderable page.
type Renderer = func(r *Request) (Render, error)

// ErrorRenderer represents a renderable page for errors.
type ErrorRenderer = func(r *Request, err error) (Render, error)

type Render struct {
	Title       string // og:title, <title>
	Description string // og:description
	ImageURL    string // og:image

	Body template.HTML
}

// Empty is a blank page.
var Empty = Render{}

// ErrNotFound is rendered for routes that don't exist.
var ErrNotFound = httperr.New(404, "page not found")

type Config struct {
	SiteName string `toml:"siteName"`
}

func NewConfig() Config {
	return Config{
		SiteName: "Cafe Canaima",
	}
}

func (c *Config) Validate() error {
	return nil
}

type renderCtx struct {
	Theme  Theme
	Render Render
	Config Config
}

func (r renderCtx) FormatTitle() string {
	if r.Render.Title == "" {
		return r.Config.SiteName
	}
	return fmt.Sprintf("%s - %s", r.Render.Title, r.Config.SiteName)
}

type Request struct {
	*http.Request
	Writer http.ResponseWriter
	CommonCtx
}

func (r *Request) Param(name string) string {
	return chi.URLParam(r.Request, name)
}

// CommonCtx is embedded into every page's template context.
type CommonCtx struct {
	Config  Config
	Request *http.Request
	Theme   Theme
	// App is the shared application context with the store and its actions.
	App *state.Context
}

type Mux struct {
	*chi.Mux
	app  *state.Context
	cfg  Config
	errR ErrorRenderer
}

func NewMux(app *state.Context, cfg Config) *Mux {
	ensureInit()

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Panicln("Missing static directory:", err)
	}

	r := chi.NewMux()
	r.Use(ThemeM)
	r.Post("/theme", handleSetTheme)
	r.Route("/static", func(r chi.Router) {
		r.Get("/components.css", componentsCSSHandler)
		r.Mount("/", http.StripPrefix("/static", http.FileServer(http.FS(static))))
	})

	m := &Mux{r, app, cfg, nil}
	r.NotFound(m.M(func(*Request) (Render, error) {
		return Empty, ErrNotFound
	}))

	return m
}

func (m *Mux) SetErrorRenderer(r ErrorRenderer) {
	m.errR = r
}

func (m *Mux) NewRequest(w http.ResponseWriter, r *http.Request) *Request {
	return &Request{
		Request: r,
		Writer:  w,
		CommonCtx: CommonCtx{
			Config:  m.cfg,
			Request: r,
			Theme:   GetTheme(r.Context()),
			App:     m.app,
		},
	}
}

// M is the middleware wrapper.
func (m *Mux) M(render Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Write the proper headers.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var request = m.NewRequest(w, r)

		page, err := render(request)
		if err != nil {
			// Copy the status code if available. Else, fallback to 500.
			code := httperr.ErrCode(err)
			if code >= 500 {
				log.Println("Page error:", err)
			}

			w.WriteHeader(code)

			// If there is no error renderer, then we just write the error down
			// in plain text.
			if m.errR == nil {
				fmt.Fprintf(w, "Error: %v", err)
				return
			}

			// Render the error page.
			page, err = m.errR(request, err)
			if err != nil {
				// This shouldn't error out, so we should log it.
				log.Println("Error rendering error page:", err)
				return
			}
		}

		// Don't render anything if an empty page is returned and there is no
		// error.
		if page == Empty {
			return
		}

		var renderCtx = renderCtx{
			Theme:  request.Theme,
			Render: page,
			Config: m.cfg,
		}

		if err := index.Execute(w, renderCtx); err != nil {
			log.Println("Error rendering index:", err)
		}
	}
}

func (m *Mux) Get(route string, r Renderer) {
	m.Mux.Get(route, m.M(r))
}

func (m *Mux) Post(route string, r Renderer) {
	m.Mux.Post(route, m.M(r))
}

// Muxer implements the interface that's passable to pages' mount functions.
type Muxer interface {
	M(Renderer) http.HandlerFunc
}

func (m *Mux) Mount(route string, mounter func(Muxer) http.Handler) {
	m.Mux.Mount(route, mounter(m))
}
