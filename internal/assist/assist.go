// Package assist suggests a one-sentence task description from the task's title,
// category, and priority using the Generative Language API.
package assist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"taskpad/internal/logging"
	"taskpad/internal/model"

	"github.com/sirupsen/logrus"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("description assist is not configured: set the API key environment variable")

type Config struct {
	Model  string
	APIKey string

	// Endpoint and HTTPClient override the service transport, e.g. in tests.
	Endpoint   string
	HTTPClient *http.Client
}

type Request struct {
	Title    string
	Category model.Category
	Priority model.Priority
}

type Assistant struct {
	model string
	log   logrus.FieldLogger
	svc   *generativelanguage.Service
}

// New builds the assistant. Without an API key or an explicit HTTP client the
// assistant is returned unavailable and Suggest reports ErrNotConfigured.
func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (*Assistant, error) {
	if log == nil {
		log = logging.Discard()
	}
	a := &Assistant{model: modelName(cfg.Model), log: log}
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.HTTPClient == nil {
		return a, nil
	}

	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		opts = append(opts, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}
	a.svc = svc
	return a, nil
}

func modelName(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		m = "gemini-1.5-flash"
	}
	if !strings.HasPrefix(m, "models/") {
		m = "models/" + m
	}
	return m
}

func (a *Assistant) Available() bool { return a != nil && a.svc != nil }

// Prompt is the instruction sent for req.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("Write one short sentence describing a to-do task. ")
	b.WriteString("Reply with the sentence only, no quotes or formatting.\n")
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(req.Title))
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if req.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", req.Priority)
	}
	return b.String()
}

// Suggest returns a one-sentence description for req.
func (a *Assistant) Suggest(ctx context.Context, req Request) (string, error) {
	if !a.Available() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", model.Invalid("Enter a title first")
	}
	call := a.svc.Models.GenerateContent(a.model, &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: Prompt(req)}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			CandidateCount:  1,
			MaxOutputTokens: 80,
		},
	})
	resp, err := call.Context(ctx).Do()
	if err != nil {
		a.log.WithError(err).Warn("description suggestion failed")
		return "", fmt.Errorf("suggest description: %w", err)
	}
	text := firstCandidateText(resp)
	out := FirstSentence(text)
	if out == "" {
		return "", errors.New("suggest description: empty response")
	}
	a.log.WithField("model", a.model).Debug("description suggested")
	return out, nil
}

func firstCandidateText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

// FirstSentence collapses whitespace, strips wrapping quotes, and cuts s after its first
// sentence terminator.
func FirstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "\"'`*")
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + 1
		if next >= len(s) || unicode.IsSpace(rune(s[next])) {
			return strings.TrimSpace(s[:next])
		}
	}
	return strings.TrimSpace(s)
}
