package assist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskpad/internal/model"
)

func TestFirstSentence(t *testing.T) {
	cases := map[string]string{
		"Prepare the Q3 report. Then send it.": "Prepare the Q3 report.",
		"  \"Book a dentist visit!\"  ":        "Book a dentist visit!",
		"Version 1.2 release notes\nare due":   "Version 1.2 release notes are due",
		"Ask why? Then wait.":                  "Ask why?",
		"":                                     "",
	}
	for in, want := range cases {
		if got := FirstSentence(in); got != want {
			t.Fatalf("FirstSentence(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(Request{Title: " Gym ", Category: model.CategoryHealth, Priority: model.PriorityHigh})
	for _, want := range []string{"Title: Gym\n", "Category: Health\n", "Priority: high\n", "one short sentence"} {
		if !strings.Contains(p, want) {
			t.Fatalf("expected %q in prompt %q", want, p)
		}
	}
}

func TestSuggest_NotConfigured(t *testing.T) {
	a, err := New(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Available() {
		t.Fatalf("expected unavailable")
	}
	if _, err := a.Suggest(context.Background(), Request{Title: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func newTestAssistant(t *testing.T, h http.HandlerFunc) *Assistant {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	a, err := New(context.Background(), Config{Model: "gemini-test", Endpoint: srv.URL + "/", HTTPClient: srv.Client()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestSuggest_UsesFirstCandidateSentence(t *testing.T) {
	var path, prompt string
	a := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(raw, &req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Finish the quarterly report draft. Share it with the team."}]}}]}`))
	})

	got, err := a.Suggest(context.Background(), Request{Title: "Quarterly report", Category: model.CategoryWork, Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != "Finish the quarterly report draft." {
		t.Fatalf("unexpected suggestion %q", got)
	}
	if !strings.HasSuffix(path, "/models/gemini-test:generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if !strings.Contains(prompt, "Title: Quarterly report") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}

func TestSuggest_ServiceErrorAndEmptyResponse(t *testing.T) {
	a := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})
	if _, err := a.Suggest(context.Background(), Request{Title: "x"}); err == nil {
		t.Fatalf("expected error")
	}

	empty := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	if _, err := empty.Suggest(context.Background(), Request{Title: "x"}); err == nil {
		t.Fatalf("expected empty response error")
	}
}

func TestSuggest_RequiresTitle(t *testing.T) {
	calls := 0
	a := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	var ve *model.ValidationError
	if _, err := a.Suggest(context.Background(), Request{}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no request")
	}
}
