package limit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitForwardedFor(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var limited bool
	for i := 0; i < 5 && !limited; i++ {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		limited = w.Code == http.StatusTooManyRequests
	}

	if !limited {
		t.Fatal("Rotating X-Forwarded-For escaped the rate limit")
	}

	// Another address has its own bucket.
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.2:1234"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatal("Unexpected status for a fresh address:", w.Code)
	}
}
