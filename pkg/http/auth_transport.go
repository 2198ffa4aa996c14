package http

import (
	"net/http"
	"strings"
)

// bearerTransport stamps a prebuilt Authorization header onto cloned requests.
type bearerTransport struct {
	header    string
	transport http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", t.header)
	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends token as a bearer credential on every request.
// A token that already carries the "Bearer " scheme is used as is; an empty
// token leaves requests unauthenticated.
func WithAuthToken(token string) HttpOpts {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		if token == "" {
			return rt
		}
		return &bearerTransport{
			header:    "Bearer " + token,
			transport: rt,
		}
	})
}
