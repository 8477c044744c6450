package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskpad/internal/api"
	"taskpad/internal/apitest"
	"taskpad/internal/model"
	"taskpad/internal/store"
)

type fixture struct {
	srv    *apitest.Server
	kv     *store.KV
	client *api.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	kv, err := store.OpenKV(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("OpenKV: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return fixture{srv: srv, kv: kv, client: api.New(api.Options{BaseURL: srv.BaseURL(), HTTPClient: srv.Client()})}
}

func (f fixture) open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), f.kv, f.client, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.client.SetTokenSource(s)
	return s
}

func TestOpen_NoStoredSession(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	if s.Current() != nil || s.LoggedIn() {
		t.Fatalf("expected logged out")
	}
	if _, ok := s.Token(); ok {
		t.Fatalf("expected no token")
	}
}

func TestOpen_InvalidStoredJSONIsDropped(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`{not json`, `{"name":"Ana"}`, `"just a string"`} {
		f := newFixture(t)
		if err := f.kv.Set(ctx, StorageKey, raw); err != nil {
			t.Fatalf("Set: %v", err)
		}
		s := f.open(t)
		if s.Current() != nil {
			t.Fatalf("%q: expected no session", raw)
		}
		if _, ok, _ := f.kv.Get(ctx, StorageKey); ok {
			t.Fatalf("%q: expected malformed entry removed", raw)
		}
	}
}

func TestLogin_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.srv.AddUser("Ana", "ana@example.com", "secret")

	s := f.open(t)
	sess, err := s.Login(ctx, "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Name != "Ana" || sess.Token == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	// A second process restores the same identity.
	restored := f.open(t)
	cur := restored.Current()
	if cur == nil || cur.Email != "ana@example.com" || cur.Token != sess.Token {
		t.Fatalf("expected restored session, got %+v", cur)
	}

	// The restored token authenticates.
	if res := f.client.Profile(ctx); !res.OK() || res.Data().Name != "Ana" {
		t.Fatalf("expected profile with restored token, got %+v %v", res.Data(), res.Err())
	}
}

func TestLogin_FailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.srv.AddUser("Ana", "ana@example.com", "secret")
	s := f.open(t)
	first, err := s.Login(ctx, "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = s.Login(ctx, "ana@example.com", "wrong")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected server message, got %v", err)
	}
	if !api.IsKind(err, api.KindAuth) {
		t.Fatalf("expected auth kind, got %v", err)
	}
	if cur := s.Current(); cur == nil || cur.Token != first.Token {
		t.Fatalf("expected previous session kept, got %+v", cur)
	}
}

func TestLogin_RequiresFields(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	_, err := s.Login(context.Background(), " ", "")
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := len(f.srv.Requests()); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestRegister_ValidationGate(t *testing.T) {
	cases := []struct {
		in   RegisterInput
		want string
	}{
		{RegisterInput{Email: "a@b.c", Password: "x", Confirm: "x"}, "Name, email, and password are required"},
		{RegisterInput{Name: "A", Email: "a@b.c", Password: "x", Confirm: "y"}, "Passwords do not match"},
	}
	f := newFixture(t)
	s := f.open(t)
	for _, tc := range cases {
		_, err := s.Register(context.Background(), tc.in)
		if err == nil || err.Error() != tc.want {
			t.Fatalf("expected %q, got %v", tc.want, err)
		}
	}
	if n := len(f.srv.Requests()); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestRegister_CreatesAndActivates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t)
	sess, err := s.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "pw", Confirm: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !s.LoggedIn() || s.Current().UserID != sess.UserID {
		t.Fatalf("expected active session")
	}

	_, err = s.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "pw", Confirm: "pw"})
	if err == nil || err.Error() != "User already exists" {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLogout_ClearsStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.srv.AddUser("Ana", "ana@example.com", "secret")
	s := f.open(t)
	if _, err := s.Login(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.LoggedIn() {
		t.Fatalf("expected logged out")
	}
	if _, ok, _ := f.kv.Get(ctx, StorageKey); ok {
		t.Fatalf("expected storage cleared")
	}
	if f.open(t).Current() != nil {
		t.Fatalf("expected no session after reopen")
	}
}

func TestExpiresAt(t *testing.T) {
	f := newFixture(t)
	tok := f.srv.IssueToken("u1", time.Hour)
	exp, ok := ExpiresAt(&model.Session{Token: tok})
	if !ok {
		t.Fatalf("expected expiry")
	}
	if d := time.Until(exp); d < 50*time.Minute || d > 61*time.Minute {
		t.Fatalf("unexpected expiry %s", exp)
	}
	if _, ok := ExpiresAt(&model.Session{Token: "opaque"}); ok {
		t.Fatalf("expected no expiry for opaque token")
	}
	if _, ok := ExpiresAt(nil); ok {
		t.Fatalf("expected no expiry for nil session")
	}
}
