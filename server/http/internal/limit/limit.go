// Package limit rate limits API routes per client address.
package limit

import (
	"net/http"
	"time"

	"github.com/cafecanaima/canaima/server/http/internal/middleware"
	"github.com/cafecanaima/canaima/server/http/internal/tx"
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/errors"
	"github.com/didip/tollbooth/v6/limiter"
)

// RateLimit allows n requests per second per client.
func RateLimit(n float64) func(http.Handler) http.Handler {
	l := tollbooth.NewLimiter(n, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	// RealIP has already rewritten RemoteAddr from the trusted headers.
	l.SetIPLookups([]string{"RemoteAddr"})

	return middleware.P(func(w http.ResponseWriter, r *http.Request) bool {
		if err := tollbooth.LimitByRequest(l, w, r); err != nil {
			tx.RenderError(w, rateErr{err})
			return false
		}
		return true
	})
}

type rateErr struct {
	*errors.HTTPError
}

func (r rateErr) StatusCode() int {
	return r.HTTPError.StatusCode
}
