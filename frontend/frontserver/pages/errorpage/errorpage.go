package errorpage

import (
	_ "embed"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/footer"
	"github.com/cafecanaima/canaima/frontend/frontserver/components/nav"
	"github.com/cafecanaima/canaima/frontend/frontserver/render"
)

var (
	//go:embed errorpage.html
	errorpageHTML string
	//go:embed errorpage.css
	errorpageCSS string
)

func init() {
	render.RegisterCSS(errorpageCSS)
}

var tmpl = render.BuildPage("errorpage", render.Page{
	Template: errorpageHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Code   int
	Status string
	Errors [][]string
}

func RenderError(r *render.Request, err error) (render.Render, error) {
	code := httperr.ErrCode(err)

	var msg = err.Error()
	// Don't show internal errors to visitors.
	if code >= 500 {
		msg = "something went wrong on our side, please try again later"
	}

	b, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		Code:      code,
		Status:    http.StatusText(code),
		Errors:    formatErrors(msg),
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Title: http.StatusText(code),
		Body:  b,
	}, nil
}

// formatErrors splits the error into lines and each line into its wrapped
// parts, capitalized and ending with a period.
func formatErrors(msg string) [][]string {
	var lines = strings.Split(msg, "\n")
	var errors = make([][]string, len(lines))

	for i, line := range lines {
		var parts = strings.SplitAfter(line, ": ")

		// Capitalize every single error's first letter.
		for j, part := range parts {
			f, sze := utf8.DecodeRuneInString(part)
			if sze > 0 {
				parts[j] = string(unicode.ToUpper(f)) + part[sze:]
			}

			// Append a period at the end for formality.
			if j == len(parts)-1 {
				parts[j] += "."
			}
		}

		errors[i] = parts
	}

	return errors
}
