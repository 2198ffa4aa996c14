package llmservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"document-qa/internal/config"
	"document-qa/internal/models"
	pkghttp "document-qa/pkg/http"
)

// maxErrorDetail bounds, in runes, how much of a raw upstream error body ends up in an answer.
const maxErrorDetail = 300

// HTTPGenerator calls an OpenAI-compatible chat-completions endpoint directly.
type HTTPGenerator struct {
	cfg       config.LLMConfig
	connector *pkghttp.Connector
}

func NewHTTPGenerator(cfg config.LLMConfig) *HTTPGenerator {
	connector := pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{BaseURL: cfg.BaseURL},
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithResponseHeaderTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAuthToken(cfg.APIKey),
	)
	return &HTTPGenerator{cfg: cfg, connector: connector}
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := ChatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    []ChatMessage{{Role: RoleUser, Content: prompt}},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}

	var resp ChatCompletionResponse
	if err := g.connector.DoRequest(ctx, http.MethodPost, chatCompletionsEndpoint, req, &resp); err != nil {
		return "", describe(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", models.ErrUpstreamFailure)
	}
	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion (finish_reason %q)", models.ErrUpstreamFailure, choice.FinishReason)
	}
	role := choice.Message.Role
	if role == "" {
		role = RoleAssistant
	}

	event := zerolog.Ctx(ctx).Debug().
		Str("model", resp.Model).
		Str("role", role).
		Str("finish_reason", choice.FinishReason)
	if resp.Usage != nil {
		event = event.Int("total_tokens", resp.Usage.TotalTokens)
	}
	event.Msg("Completion received")

	return choice.Message.Content, nil
}

// describe turns connector errors into messages that read well as an answer.
func describe(err error) error {
	var httpErr *pkghttp.HTTPError
	var netErr *pkghttp.NetworkError
	var decErr *pkghttp.DecodeError
	switch {
	case errors.As(err, &httpErr):
		detail := httpErr.Message
		var envelope errorEnvelope
		if json.Unmarshal([]byte(httpErr.Message), &envelope) == nil && envelope.text() != "" {
			detail = envelope.text()
		}
		detail = truncate(detail, maxErrorDetail)
		return fmt.Errorf("%w: upstream returned HTTP %d: %s", models.ErrUpstreamFailure, httpErr.StatusCode, detail)
	case errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", models.ErrUpstreamFailure, netErr)
	case errors.As(err, &decErr):
		return fmt.Errorf("%w: malformed response: %v", models.ErrUpstreamFailure, decErr.Err)
	default:
		return fmt.Errorf("%w: %v", models.ErrUpstreamFailure, err)
	}
}

// truncate cuts s to at most n runes, never inside a multi-byte sequence.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
