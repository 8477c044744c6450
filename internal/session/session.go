// Package session holds the authenticated identity for the process. It is restored once
// from durable storage and changes only on login, register, or logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskpad/internal/api"
	"taskpad/internal/logging"
	"taskpad/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// StorageKey is the durable storage key holding the JSON session.
const StorageKey = "user"

var ErrNotLoggedIn = errors.New("not logged in")

// Storage is the durable key/value storage the session persists to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Remote is the subset of the api client the session needs.
type Remote interface {
	Login(ctx context.Context, email, password string) api.Result[model.Session]
	Register(ctx context.Context, in api.RegisterInput) api.Result[model.Session]
}

type Store struct {
	kv     Storage
	remote Remote
	log    logrus.FieldLogger

	mu      sync.RWMutex
	current *model.Session
}

// Open restores the persisted session, if any. Missing, malformed, or token-less entries
// are dropped and the store starts logged out.
func Open(ctx context.Context, kv Storage, remote Remote, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	s := &Store{kv: kv, remote: remote, log: log}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return s, nil
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || !sess.Valid() {
		log.WithError(err).Debug("dropping malformed stored session")
		if rmErr := kv.Remove(ctx, StorageKey); rmErr != nil {
			log.WithError(rmErr).Warn("remove malformed session")
		}
		return s, nil
	}
	s.current = &sess
	log.WithField("user", sess.Email).Debug("session restored")
	return s, nil
}

// Current returns a copy of the active session, or nil when logged out.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *Store) LoggedIn() bool { return s.Current() != nil }

// Token implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || !s.current.Valid() {
		return "", false
	}
	return s.current.Token, true
}

// Login authenticates and persists the returned session. On failure the previous state is
// left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.Invalid("Email and password are required")
	}
	res := s.remote.Login(ctx, email, password)
	if !res.OK() {
		s.log.WithError(res.Err()).Info("login failed")
		return nil, res.Err()
	}
	return s.activate(ctx, res.Data())
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Register validates the input, creates the account, and persists the returned session.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*model.Session, error) {
	if err := ValidateRegister(in); err != nil {
		return nil, err
	}
	res := s.remote.Register(ctx, api.RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	if !res.OK() {
		s.log.WithError(res.Err()).Info("register failed")
		return nil, res.Err()
	}
	return s.activate(ctx, res.Data())
}

// ValidateRegister is the client-side gate applied before a register call.
func ValidateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return model.Invalid("Name, email, and password are required")
	}
	if in.Password != in.Confirm {
		return model.Invalid("Passwords do not match")
	}
	return nil
}

func (s *Store) activate(ctx context.Context, sess model.Session) (*model.Session, error) {
	if !sess.Valid() {
		return nil, &api.Error{Kind: api.KindDecode, Message: "Server returned no token"}
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, StorageKey, string(b)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.log.WithField("user", sess.Email).Info("session started")
	cp := sess
	return &cp, nil
}

// Logout removes the persisted session and clears the active one.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.log.Info("session ended")
	return nil
}

// ExpiresAt reads the exp claim of a JWT session token without verifying it. ok is false
// when the token is not a JWT or carries no expiry.
func ExpiresAt(sess *model.Session) (time.Time, bool) {
	if sess == nil || strings.TrimSpace(sess.Token) == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
