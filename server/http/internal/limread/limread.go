// Package limread limits the size of request bodies.
package limread

import (
	"fmt"
	"io"
	"net/http"

	"github.com/c2h5oh/datasize"
	"github.com/cafecanaima/canaima/server/http/internal/middleware"
)

type ErrBodyTooLarge struct {
	Max int64
}

func (err ErrBodyTooLarge) StatusCode() int {
	return 413
}

func (err ErrBodyTooLarge) Error() string {
	return fmt.Sprintf(
		"body too large, maximum size allowed is %s",
		datasize.ByteSize(err.Max).HumanReadable(),
	)
}

// LimitBody wraps every request body so that reading past the given size
// returns ErrBodyTooLarge.
func LimitBody(size datasize.ByteSize) middleware.F {
	return middleware.P(func(w http.ResponseWriter, r *http.Request) bool {
		r.Body = newReadCloser(NewLimitedReader(r.Body, int64(size.Bytes())), r.Body)
		return true
	})
}

type readCloser struct {
	io.Reader
	io.Closer
}

func newReadCloser(r io.Reader, c io.Closer) readCloser {
	return readCloser{r, c}
}

type LimitedReader struct {
	reader io.LimitedReader
	Bytes  int64
}

func NewLimitedReader(r io.Reader, max int64) *LimitedReader {
	return &LimitedReader{
		reader: io.LimitedReader{R: r, N: max + 1},
		Bytes:  max,
	}
}

func (r *LimitedReader) Read(b []byte) (int, error) {
	n, err := r.reader.Read(b)

	if r.reader.N <= 0 {
		return n, ErrBodyTooLarge{Max: r.Bytes}
	}

	return n, err
}
