// Package app wires the client-side components together once per process and hands the
// result to the CLI and TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"taskpad/internal/api"
	"taskpad/internal/assist"
	"taskpad/internal/logging"
	"taskpad/internal/session"
	"taskpad/internal/store"
	"taskpad/internal/tasks"

	"github.com/sirupsen/logrus"
)

const apiURLEnv = "TASKPAD_API_URL"

type Options struct {
	// ConfigDir overrides TASKPAD_CONFIG_DIR / ~/.taskpad.
	ConfigDir string
	// APIURL overrides TASKPAD_API_URL and the config file.
	APIURL string
	Debug  bool

	// HTTPClient and AssistEndpoint replace the network transports, e.g. in tests.
	HTTPClient     *http.Client
	AssistEndpoint string
	// Logger replaces the rotating file logger.
	Logger *logrus.Logger
}

type App struct {
	ConfigDir string
	Config    *store.GlobalConfig
	Log       *logrus.Logger

	KV      *store.KV
	Client  *api.Client
	Session *session.Store
	Tasks   *tasks.Collection
	Assist  *assist.Assistant

	closers []io.Closer
}

// Open builds the App: config, logger, storage, api client, session, collection, assist.
func Open(ctx context.Context, opts Options) (*App, error) {
	dir := strings.TrimSpace(opts.ConfigDir)
	if dir == "" {
		d, err := store.ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = d
	}
	if err := store.LoadEnv(dir); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := store.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	a := &App{ConfigDir: dir, Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	if opts.Logger != nil {
		a.Log = opts.Logger
	} else {
		l, closer, err := logging.New(logging.Options{Dir: dir, Level: cfg.LogLevel, Debug: opts.Debug})
		if err != nil {
			return nil, err
		}
		a.Log = l
		a.closers = append(a.closers, closer)
	}

	kv, err := store.OpenKV(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.KV = kv
	a.closers = append(a.closers, kv)

	clientOpts := api.Options{
		BaseURL:    ResolveAPIURL(opts.APIURL, cfg),
		HTTPClient: opts.HTTPClient,
		Logger:     a.Log.WithField("component", "api"),
	}
	if b := cfg.Breaker; b != nil && b.Enabled {
		clientOpts.Breaker = api.NewBreaker(b.Failures, time.Duration(b.OpenSeconds)*time.Second, a.Log)
	}
	a.Client = api.New(clientOpts)

	sess, err := session.Open(ctx, kv, a.Client, a.Log.WithField("component", "session"))
	if err != nil {
		return nil, err
	}
	a.Session = sess
	a.Client.SetTokenSource(sess)

	a.Tasks = tasks.NewCollection(a.Client, a.Log.WithField("component", "tasks"))

	assistCfg := assist.Config{
		Model:  cfg.AssistModel(),
		APIKey: os.Getenv(cfg.AssistKeyEnv()),
	}
	if opts.AssistEndpoint != "" {
		assistCfg.Endpoint = opts.AssistEndpoint
		assistCfg.HTTPClient = opts.HTTPClient
	}
	as, err := assist.New(ctx, assistCfg, a.Log.WithField("component", "assist"))
	if err != nil {
		// Assist is optional; the rest of the app works without it.
		a.Log.WithError(err).Warn("description assist disabled")
		as, _ = assist.New(ctx, assist.Config{}, a.Log)
	}
	a.Assist = as

	a.Log.WithFields(logrus.Fields{"apiUrl": a.Client.BaseURL(), "loggedIn": sess.LoggedIn()}).Debug("app opened")
	ok = true
	return a, nil
}

// ResolveAPIURL applies flag > TASKPAD_API_URL > config > default.
func ResolveAPIURL(flag string, cfg *store.GlobalConfig) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(apiURLEnv)); v != "" {
		return v
	}
	if cfg != nil && strings.TrimSpace(cfg.APIURL) != "" {
		return strings.TrimSpace(cfg.APIURL)
	}
	return api.DefaultBaseURL
}

// Logout ends the session and drops the cached task list.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Tasks.Reset()
	return nil
}

// RequireSession returns session.ErrNotLoggedIn when nobody is logged in.
func (a *App) RequireSession() error {
	if !a.Session.LoggedIn() {
		return session.ErrNotLoggedIn
	}
	return nil
}

// SaveConfig persists a.Config.
func (a *App) SaveConfig() error {
	return store.SaveConfig(a.ConfigDir, a.Config)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
