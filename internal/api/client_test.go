package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskpad/internal/model"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, h http.HandlerFunc, ts TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api/", HTTPClient: srv.Client(), Tokens: ts})
}

func TestClient_BearerAttachedOnlyWithToken(t *testing.T) {
	var got []string
	h := func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}

	c := newTestClient(t, h, nil)
	if res := c.ListTasks(context.Background()); !res.OK() {
		t.Fatalf("expected ok, got %v", res.Err())
	}
	c.SetTokenSource(staticToken("abc.def.ghi"))
	if res := c.ListTasks(context.Background()); !res.OK() {
		t.Fatalf("expected ok, got %v", res.Err())
	}
	c.SetTokenSource(staticToken(""))
	_ = c.ListTasks(context.Background())

	want := []string{"", "Bearer abc.def.ghi", ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("request %d: expected auth %q, got %q", i, want[i], got[i])
		}
	}
}

func TestClient_BaseURLTrimsTrailingSlash(t *testing.T) {
	c := New(Options{BaseURL: " http://example.test/api/ "})
	if c.BaseURL() != "http://example.test/api" {
		t.Fatalf("unexpected base url: %q", c.BaseURL())
	}
	if New(Options{}).BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base url")
	}
}

func TestClient_FailureMessagePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
		want   string
	}{
		{"message wins", 400, `{"message":"Invalid credentials","error":"other"}`, KindServer, "Invalid credentials"},
		{"error field", 400, `{"error":"Current password is incorrect"}`, KindServer, "Current password is incorrect"},
		{"fallback on empty body", 500, ``, KindServer, "Login failed"},
		{"fallback on html", 502, `<html>bad gateway</html>`, KindServer, "Login failed"},
		{"unauthorized", 401, `{"message":"Not authorized"}`, KindAuth, "Not authorized"},
		{"not found", 404, `{}`, KindNotFound, "Login failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, nil)
			res := c.Login(context.Background(), "a@b.c", "pw")
			if res.OK() {
				t.Fatalf("expected failure")
			}
			var apiErr *Error
			if !errors.As(res.Err(), &apiErr) {
				t.Fatalf("expected *Error, got %T", res.Err())
			}
			if apiErr.Message != tc.want {
				t.Fatalf("expected message %q, got %q", tc.want, apiErr.Message)
			}
			if apiErr.Kind != tc.kind {
				t.Fatalf("expected kind %q, got %q", tc.kind, apiErr.Kind)
			}
			if apiErr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, apiErr.Status)
			}
		})
	}
}

func TestClient_TransportFailureUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, HTTPClient: &http.Client{Timeout: time.Second}})
	res := c.CreateTask(context.Background(), model.TaskInput{})
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if !IsKind(res.Err(), KindTransport) {
		t.Fatalf("expected transport error, got %v", res.Err())
	}
	if res.Err().Error() != "Failed to create task" {
		t.Fatalf("unexpected message: %q", res.Err().Error())
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id":`))
	}, staticToken("t"))
	res := c.GetTask(context.Background(), "abc")
	if !IsKind(res.Err(), KindDecode) {
		t.Fatalf("expected decode error, got %v", res.Err())
	}
	if res.Err().Error() != "Failed to get task" {
		t.Fatalf("unexpected message: %q", res.Err().Error())
	}
}

func TestClient_TaskRoutesAndBodies(t *testing.T) {
	var method, path, body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"id":"t1"}`))
		default:
			_, _ = w.Write([]byte(`{"id":"t1","title":"Write report","dueDate":"2024-05-01T00:00:00.000Z","category":"Work","priority":"high","status":"completed"}`))
		}
	}, staticToken("t"))

	st := model.StatusCompleted
	res := c.UpdateTask(context.Background(), "t1", model.TaskInput{Status: &st})
	if !res.OK() {
		t.Fatalf("expected ok, got %v", res.Err())
	}
	if method != http.MethodPut || path != "/api/tasks/t1" {
		t.Fatalf("unexpected route %s %s", method, path)
	}
	if strings.TrimSpace(body) != `{"status":"completed"}` {
		t.Fatalf("expected status-only body, got %s", body)
	}
	if res.Data().ID != "t1" {
		t.Fatalf("expected id fallback to populate ID, got %q", res.Data().ID)
	}

	if del := c.DeleteTask(context.Background(), "t1"); !del.OK() {
		t.Fatalf("expected delete ok, got %v", del.Err())
	}
	if method != http.MethodDelete || path != "/api/tasks/t1" {
		t.Fatalf("unexpected route %s %s", method, path)
	}
}

func TestClient_EmptyIDIsNotFoundWithoutRequest(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ }, nil)
	if res := c.DeleteTask(context.Background(), " "); !IsKind(res.Err(), KindNotFound) {
		t.Fatalf("expected not_found, got %v", res.Err())
	}
	if calls != 0 {
		t.Fatalf("expected no request, got %d", calls)
	}
}

func TestClient_ChangePasswordDefaultMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, staticToken("t"))
	res := c.ChangePassword(context.Background(), "old", "new")
	if !res.OK() || res.Data().Message != "Password updated successfully" {
		t.Fatalf("unexpected result: %+v %v", res.Data(), res.Err())
	}
}

func TestClient_BreakerOpensAfterServerFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"down"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Breaker: NewBreaker(2, time.Minute, nil)})
	for i := 0; i < 2; i++ {
		res := c.ListTasks(context.Background())
		if res.Err() == nil || res.Err().Error() != "down" {
			t.Fatalf("call %d: expected server message, got %v", i, res.Err())
		}
	}
	res := c.ListTasks(context.Background())
	if !IsKind(res.Err(), KindTransport) {
		t.Fatalf("expected breaker rejection as transport error, got %v", res.Err())
	}
	if res.Err().Error() != "Failed to get tasks" {
		t.Fatalf("unexpected message: %q", res.Err().Error())
	}
	if calls != 2 {
		t.Fatalf("expected 2 server calls, got %d", calls)
	}
}

func TestResult_FailNilStillFails(t *testing.T) {
	r := Fail[int](nil)
	if r.OK() || r.Err() == nil {
		t.Fatalf("expected failure")
	}
	ok := Ok(3)
	if v, err := ok.Unwrap(); v != 3 || err != nil {
		t.Fatalf("unexpected unwrap: %v %v", v, err)
	}
}
