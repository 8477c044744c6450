package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"taskpad/internal/api"
	"taskpad/internal/apitest"
	"taskpad/internal/logging"
	"taskpad/internal/store"
)

func TestResolveAPIURL_Precedence(t *testing.T) {
	cfg := &store.GlobalConfig{APIURL: "http://from-config/api"}
	t.Setenv("TASKPAD_API_URL", "")

	if got := ResolveAPIURL("", nil); got != api.DefaultBaseURL {
		t.Fatalf("expected default, got %q", got)
	}
	if got := ResolveAPIURL("", cfg); got != "http://from-config/api" {
		t.Fatalf("expected config, got %q", got)
	}
	t.Setenv("TASKPAD_API_URL", "http://from-env/api")
	if got := ResolveAPIURL("", cfg); got != "http://from-env/api" {
		t.Fatalf("expected env, got %q", got)
	}
	if got := ResolveAPIURL("http://from-flag/api", cfg); got != "http://from-flag/api" {
		t.Fatalf("expected flag, got %q", got)
	}
}

func TestOpen_WiresSessionIntoClient(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("Ana", "ana@example.com", "secret")
	dir := t.TempDir()

	a, err := Open(ctx, Options{ConfigDir: dir, APIURL: srv.BaseURL(), HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Session.LoggedIn() {
		t.Fatalf("expected logged out")
	}
	if err := a.RequireSession(); err == nil {
		t.Fatalf("expected ErrNotLoggedIn")
	}
	if _, err := a.Session.Login(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := a.Tasks.Load(ctx); err != nil {
		t.Fatalf("Load with session token: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(logging.Path(dir)); err != nil {
		t.Fatalf("expected log file: %v", err)
	}

	// Reopen restores the persisted session; logout clears it and the list.
	b, err := Open(ctx, Options{ConfigDir: dir, APIURL: srv.BaseURL(), HTTPClient: srv.Client(), Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if !b.Session.LoggedIn() {
		t.Fatalf("expected restored session")
	}
	_ = b.Tasks.Load(ctx)
	if err := b.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if b.Session.LoggedIn() || b.Tasks.Loaded() {
		t.Fatalf("expected logout to clear session and tasks")
	}
}

func TestOpen_ReadsEnvFileAndBreakerConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKPAD_API_URL", "")
	os.Unsetenv("TASKPAD_API_URL")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TASKPAD_API_URL=http://from-dotenv/api\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := store.SaveConfig(dir, &store.GlobalConfig{Breaker: &store.BreakerConfig{Enabled: true, Failures: 2}}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	a, err := Open(context.Background(), Options{ConfigDir: dir, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()
	if a.Client.BaseURL() != "http://from-dotenv/api" {
		t.Fatalf("expected .env api url, got %q", a.Client.BaseURL())
	}
	if a.Assist == nil {
		t.Fatalf("expected assist to be built even without a key")
	}
}
