// Package apitest provides an in-memory stand-in for the remote task service, used by
// tests across packages.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"taskpad/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id    string
	name  string
	email string
	hash  []byte
}

func hashPassword(pw string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}
	return h
}

func (u *user) checkPassword(pw string) bool {
	return bcrypt.CompareHashAndPassword(u.hash, []byte(pw)) == nil
}

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

type failure struct {
	status int
	body   string
}

type gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]*user // by email
	tasks    []*model.Task
	requests []Request
	failures map[string]failure
	gates    map[string]*gate
	now      func() time.Time
}

func NewServer() *Server {
	s := &Server{
		secret:   []byte("apitest-secret"),
		users:    map[string]*user{},
		failures: map[string]failure{},
		gates:    map[string]*gate{},
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// BaseURL is the api root to hand to api.Options.
func (s *Server) BaseURL() string { return s.URL + "/api" }

func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func key(method, path string) string { return strings.ToUpper(method) + " " + path }

// FailNext makes the next request matching method and path (relative to the api root,
// e.g. "/tasks/abc") respond with status and the raw body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(method, path)] = failure{status: status, body: body}
}

// Gate blocks the next matching request until release is called. arrived is closed once
// the request has reached the server.
func (s *Server) Gate(method, path string) (arrived <-chan struct{}, release func()) {
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[key(method, path)] = g
	s.mu.Unlock()
	return g.arrived, func() { g.once.Do(func() { close(g.release) }) }
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// AddUser registers a user directly and returns a session carrying a valid token.
func (s *Server) AddUser(name, email, password string) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{id: NewID(), name: name, email: strings.ToLower(email), hash: hashPassword(password)}
	s.users[u.email] = u
	return s.sessionFor(u)
}

// AddTask stores a task for the owner as-is, assigning an id when missing.
func (s *Server) AddTask(ownerID string, t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = NewID()
	}
	t.OwnerID = ownerID
	cp := t
	s.tasks = append(s.tasks, &cp)
	return cp
}

// Task returns the stored copy of a task.
func (s *Server) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return *t, true
		}
	}
	return model.Task{}, false
}

// IssueToken signs a token for userID expiring after ttl (negative ttl yields an expired token).
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

func (s *Server) sessionFor(u *user) model.Session {
	return model.Session{UserID: u.id, Name: u.name, Email: u.email, Token: s.IssueToken(u.id, 24*time.Hour)}
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/users", s.register).Methods(http.MethodPost)
	a.HandleFunc("/users/login", s.login).Methods(http.MethodPost)
	a.HandleFunc("/users/profile", s.auth(s.profile)).Methods(http.MethodGet)
	a.HandleFunc("/users/change-password", s.auth(s.changePassword)).Methods(http.MethodPost)
	a.HandleFunc("/tasks", s.auth(s.listTasks)).Methods(http.MethodGet)
	a.HandleFunc("/tasks", s.auth(s.createTask)).Methods(http.MethodPost)
	a.HandleFunc("/tasks/{id}", s.auth(s.getTask)).Methods(http.MethodGet)
	a.HandleFunc("/tasks/{id}", s.auth(s.updateTask)).Methods(http.MethodPut)
	a.HandleFunc("/tasks/{id}", s.auth(s.deleteTask)).Methods(http.MethodDelete)
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		rel := strings.TrimPrefix(r.URL.Path, "/api")
		k := key(r.Method, rel)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          rel,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		f, failing := s.failures[k]
		if failing {
			delete(s.failures, k)
		}
		g := s.gates[k]
		if g != nil {
			delete(s.gates, k)
		}
		s.mu.Unlock()

		if g != nil {
			close(g.arrived)
			<-g.release
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(h func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hdr := r.Header.Get("Authorization")
		if !strings.HasPrefix(hdr, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, no token"})
			return
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(hdr, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, token failed"})
			return
		}
		s.mu.Lock()
		var u *user
		for _, cand := range s.users {
			if cand.id == claims.Subject {
				u = cand
				break
			}
		}
		s.mu.Unlock()
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, user not found"})
			return
		}
		h(w, r, u)
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please add all fields"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	u := &user{id: NewID(), name: in.Name, email: email, hash: h}
	s.users[email] = u
	sess := s.sessionFor(u)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(in.Email))]
	var sess model.Session
	if ok && u.checkPassword(in.Password) {
		sess = s.sessionFor(u)
	}
	s.mu.Unlock()
	if !ok || sess.Token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, model.Profile{UserID: u.id, Name: u.name, Email: u.email})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, u *user) {
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !u.checkPassword(in.CurrentPassword) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Current password is incorrect"})
		return
	}
	u.hash = hashPassword(in.NewPassword)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (s *Server) ownedTask(id, ownerID string) *model.Task {
	for _, t := range s.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return t
		}
	}
	return nil
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.OwnerID == u.id {
			out = append(out, *t)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	t := s.ownedTask(mux.Vars(r)["id"], u.id)
	var cp model.Task
	if t != nil {
		cp = *t
	}
	s.mu.Unlock()
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request, u *user) {
	var in model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid task body"})
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.DueDate == nil || *in.DueDate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please add a title and due date"})
		return
	}
	now := s.now().UTC()
	t := in.Apply(model.Task{
		ID:        NewID(),
		Category:  model.CategoryWork,
		Priority:  model.PriorityMedium,
		Status:    model.StatusPending,
		OwnerID:   u.id,
		CreatedAt: &now,
		UpdatedAt: &now,
	})
	s.mu.Lock()
	s.tasks = append(s.tasks, &t)
	cp := t
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, cp)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, u *user) {
	var in model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid task body"})
		return
	}
	s.mu.Lock()
	t := s.ownedTask(mux.Vars(r)["id"], u.id)
	if t == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	*t = in.Apply(*t)
	now := s.now().UTC()
	t.UpdatedAt = &now
	cp := *t
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, u *user) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == id && t.OwnerID == u.id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
	s.mu.Unlock()
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
