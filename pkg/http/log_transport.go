package http

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := zerolog.Ctx(req.Context())
	start := time.Now()

	resp, err := t.transport.RoundTrip(req)

	event := logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("HTTP outbound request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("HTTP outbound request")
	return resp, nil
}

// WithRequestLogging logs method, URL, status and latency of every request.
// Headers are not logged, so credentials never reach the log.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
