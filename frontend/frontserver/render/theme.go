package render

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Theme is the Bootstrap color mode of the site.
type Theme uint8

const (
	LightTheme Theme = iota
	DarkTheme

	// reserved for internal use
	themeLen
)

const DefaultTheme = LightTheme

func ParseTheme(name string) Theme {
	for t := Theme(0); t < themeLen; t++ {
		if t.String() == name {
			return t
		}
	}

	return DefaultTheme
}

func (t Theme) String() string {
	switch t {
	case DarkTheme:
		return "dark"
	case LightTheme:
		fallthrough
	default:
		return "light"
	}
}

// Other returns the theme that a toggle switches to.
func (t Theme) Other() Theme {
	if t == DarkTheme {
		return LightTheme
	}
	return DarkTheme
}

type _renderctx struct{}

var renderctxkey = _renderctx{}

func ThemeM(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var theme = DefaultTheme

		if c, err := r.Cookie("theme"); err == nil {
			theme = ParseTheme(c.Value)
		}

		next.ServeHTTP(
			w,
			r.WithContext(context.WithValue(r.Context(), renderctxkey, theme)),
		)
	})
}

func GetTheme(ctx context.Context) Theme {
	if v, ok := ctx.Value(renderctxkey).(Theme); ok {
		return v
	}
	return DefaultTheme
}

func SetThemeCookie(w http.ResponseWriter, theme Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    theme.String(),
		Path:     "/",
		Expires:  time.Unix(math.MaxInt32, 0),
		SameSite: http.SameSiteLaxMode,
	})
}

func handleSetTheme(w http.ResponseWriter, r *http.Request) {
	SetThemeCookie(w, ParseTheme(r.FormValue("theme")))

	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Redirections
	http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
}

// localReferer returns the path of the referer if it points to this site, or
// the root otherwise.
func localReferer(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}

	// Browsers read a leading "//" or "/\" as another host.
	p := path.Clean(u.Path)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
