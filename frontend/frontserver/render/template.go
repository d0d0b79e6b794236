package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
)

var (
	//go:embed index.html
	indexHTML string
	//go:embed style.css
	styleCSS string
	//go:embed static
	staticFS embed.FS
)

// runtime minifier
var minifier = func() (minifier *minify.M) {
	minifier = minify.New()
	minifier.AddFunc("text/css", css.Minify)
	return
}()

var globalFns = template.FuncMap{
	"unixNano": func(i int64) time.Time {
		return time.Unix(0, i)
	},
	"humanizeNumber": func(number int) string {
		return humanize.Comma(int64(number))
	},
	"humanizeTime": func(t time.Time) string {
		return humanize.Time(t)
	},
	// price formats a price in dollars with thousands separators.
	"price": func(f float64) string {
		return "$" + humanize.FormatFloat("#,###.##", f)
	},
	"asset": AssetURL,
}

// AssetURL resolves the path of an embedded static file to its URL. It panics
// if the file does not exist, which catches broken references on first render.
func AssetURL(name string) string {
	name = strings.TrimPrefix(name, "/")

	if _, err := staticFS.Open(path.Join("static", name)); err != nil {
		log.Panicln("Unknown static asset:", name)
	}

	return "/static/" + name
}

// Component is a template fragment that pages include with
// {{ template "name" . }}.
type Component struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

type Page struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

func BuildPage(n string, p Page) *Template {
	return &Template{
		name: n,
		page: p,
	}
}

type Template struct {
	*template.Template
	name string
	page Page
	once sync.Once
	err  error
}

func (t *Template) prepare() error {
	t.once.Do(func() { t.err = t.do() })
	return t.err
}

// collect flattens the nested components into the given maps. Functions that
// are already set are not overridden.
func collect(cs map[string]Component, into map[string]Component, fns template.FuncMap) {
	for n, c := range cs {
		if _, ok := into[n]; ok {
			continue
		}
		into[n] = c

		for name, fn := range c.Functions {
			if _, ok := fns[name]; !ok {
				fns[name] = fn
			}
		}

		collect(c.Components, into, fns)
	}
}

func (t *Template) do() error {
	var components = map[string]Component{}
	var functions = template.FuncMap{}

	for n, fn := range t.page.Functions {
		functions[n] = fn
	}

	collect(t.page.Components, components, functions)

	tmpl := template.New(t.name)
	tmpl = tmpl.Funcs(globalFns)
	tmpl = tmpl.Funcs(functions)

	tmpl, err := tmpl.Parse(t.page.Template)
	if err != nil {
		return errors.Wrapf(err, "Failed to parse page %q", t.name)
	}

	// Parse all components' HTMLs.
	for n, component := range components {
		_, err := tmpl.Parse(fmt.Sprintf(
			"{{ define %q }}%s{{ end }}", n, component.Template,
		))
		if err != nil {
			return errors.Wrapf(err, "Failed to parse component %q", n)
		}
	}

	t.Template = tmpl
	return nil
}

// Render renders the template with the given argument into HTML.
func (t *Template) Render(v interface{}) (template.HTML, error) {
	if err := t.prepare(); err != nil {
		return "", err
	}

	var b bytes.Buffer

	if err := t.Execute(&b, v); err != nil {
		return "", errors.Wrapf(err, "Failed to render %q", t.name)
	}

	return template.HTML(b.String()), nil
}

var (
	cssMutex     sync.Mutex
	componentCSS = []string{styleCSS}

	componentsCSS    []byte
	componentModTime = time.Now()
)

// RegisterCSS adds the stylesheet to the global CSS file, which can be located
// in /static/components.css. It must be called before NewMux, usually in init.
func RegisterCSS(css string) {
	cssMutex.Lock()
	componentCSS = append(componentCSS, css)
	cssMutex.Unlock()
}

func initializeCSS() {
	cssMutex.Lock()
	defer cssMutex.Unlock()

	var b bytes.Buffer

	for _, css := range componentCSS {
		if err := minifier.Minify("text/css", &b, strings.NewReader(css)); err != nil {
			log.Panicln("Failed to minify CSS:", err)
		}
	}

	componentsCSS = b.Bytes()
}

func componentsCSSHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	http.ServeContent(
		w, r, "components.css", componentModTime,
		bytes.NewReader(componentsCSS),
	)
}

var initOnce sync.Once
var index *template.Template

func ensureInit() {
	initOnce.Do(func() {
		index = template.Must(
			template.
				New("index").
				Funcs(globalFns).
				Parse(indexHTML),
		)

		initializeCSS()
	})
}
