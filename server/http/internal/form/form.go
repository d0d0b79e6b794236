// Package form decodes request bodies and queries into structs.
package form

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/c2h5oh/datasize"
	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

const MaxMemory = int64(2 * datasize.MB)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Unmarshal decodes the request into the interface. JSON bodies are decoded
// with encoding/json; everything else is treated as a form. Decoding errors are
// 400 unless the body reader says otherwise, e.g. 413.
func Unmarshal(r tx.Request, v interface{}) error {
	if isJSON(r.Request) {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return httperr.Wrap(err, httperr.ErrCodeOr(err, 400), "Invalid JSON body")
		}
		return nil
	}

	if err := unmarshalForm(r.Request, v); err != nil {
		return httperr.Wrap(err, httperr.ErrCodeOr(err, 400), "Invalid form")
	}

	return nil
}

// Query decodes only the URL query into the interface.
func Query(r tx.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return httperr.Wrap(err, 400, "Invalid query")
	}
	return nil
}

func unmarshalForm(r *http.Request, v interface{}) error {
	// Prioritize multipart.
	if err := r.ParseMultipartForm(MaxMemory); err == nil && r.MultipartForm != nil {
		return decoder.Decode(v, r.MultipartForm.Value)
	}

	if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "Failed to parse form")
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPost, http.MethodPut:
		return decoder.Decode(v, r.PostForm)
	default:
		return decoder.Decode(v, r.Form)
	}
}

func isJSON(r *http.Request) bool {
	t, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && t == "application/json"
}
