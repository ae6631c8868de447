package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"taskcli/internal/service"
)

// RecordedRequest is one request seen by FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type fakeUser struct {
	id       int64
	password string
}

type fakeTask struct {
	service.Task
	createdAt string
}

// FakeBackend is an httptest server speaking the task backend's REST API.
// It signs HS256 JWTs on login and checks them on every protected route.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]fakeUser
	tasks    map[int64]fakeTask
	cats     map[int64]service.Category
	nextID   int64
	requests []RecordedRequest
	failures map[string]int
	delay    time.Duration
	revoked  bool
}

// NewFakeBackend starts a FakeBackend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		secret:   []byte("test-secret"),
		users:    make(map[string]fakeUser),
		tasks:    make(map[int64]fakeTask),
		cats:     make(map[int64]service.Category),
		failures: make(map[string]int),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(b.record, b.inject, b.authenticate)

	api.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", b.me).Methods(http.MethodGet)
	api.HandleFunc("/auth/validate-token", b.validateToken).Methods(http.MethodGet)
	api.HandleFunc("/users", b.register).Methods(http.MethodPost)

	api.HandleFunc("/tasks", b.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", b.createTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id:[0-9]+}", b.getTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}", b.updateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id:[0-9]+}", b.deleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id:[0-9]+}/complete", b.toggleTask).Methods(http.MethodPatch)

	api.HandleFunc("/categories", b.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", b.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id:[0-9]+}", b.updateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id:[0-9]+}", b.deleteCategory).Methods(http.MethodDelete)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API root.
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

// AddUser registers an account directly.
func (b *FakeBackend) AddUser(username, password string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.users[username] = fakeUser{id: b.nextID, password: password}
	return b.nextID
}

// AddCategory stores a category directly.
func (b *FakeBackend) AddCategory(name string) service.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := service.Category{ID: b.nextID, Name: name}
	b.cats[c.ID] = c
	return c
}

// AddTask stores a task directly.
func (b *FakeBackend) AddTask(title string, categoryID int64) service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	t := service.Task{ID: b.nextID, Title: title}
	if c, ok := b.cats[categoryID]; ok {
		t.Category = &c
	}
	b.tasks[t.ID] = fakeTask{Task: t, createdAt: "2024-05-01T10:00:00"}
	return t
}

// Task returns a stored task.
func (b *FakeBackend) Task(id int64) (service.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	return t.Task, ok
}

// Category returns a stored category.
func (b *FakeBackend) Category(id int64) (service.Category, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cats[id]
	return c, ok
}

// IssueToken signs a token for username valid for ttl.
func (b *FakeBackend) IssueToken(username string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// Fail makes every request matching method and path answer with status.
// path is the full URL path, e.g. /api/tasks.
func (b *FakeBackend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = status
}

// SetDelay delays every response by d.
func (b *FakeBackend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// RevokeTokens rejects every token issued so far and from now on.
func (b *FakeBackend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = true
}

// Requests returns every request received, in order.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request.
func (b *FakeBackend) LastRequest() RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, fail := b.failures[r.Method+" "+r.URL.Path]
		delay := b.delay
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeText(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" || (r.Method == http.MethodPost && r.URL.Path == "/api/users") {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeText(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return b.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		b.mu.Lock()
		revoked := b.revoked
		_, known := b.users[claims.Subject]
		b.mu.Unlock()

		if err != nil || revoked || !known {
			writeText(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		r.Header.Set("X-Fake-User", claims.Subject)
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeText(w, http.StatusBadRequest, "Login failed: "+err.Error())
		return
	}
	b.mu.Lock()
	u, ok := b.users[creds.Username]
	b.mu.Unlock()
	if !ok || u.password != creds.Password {
		writeText(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, service.LoginResult{
		Message: "Login successful",
		Token:   b.IssueToken(creds.Username, time.Hour),
		UserID:  u.id,
	})
}

func (b *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get("X-Fake-User")
	b.mu.Lock()
	u := b.users[name]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, service.User{ID: u.id, Username: name})
}

func (b *FakeBackend) validateToken(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Token is valid")
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeText(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	b.mu.Lock()
	if _, exists := b.users[creds.Username]; exists {
		b.mu.Unlock()
		writeText(w, http.StatusConflict, "This username has already been taken")
		return
	}
	b.nextID++
	b.users[creds.Username] = fakeUser{id: b.nextID, password: creds.Password}
	id := b.nextID
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, service.User{ID: id, Username: creds.Username})
}

// taskJSON renders a task the way the backend does: createdAt without a zone.
func taskJSON(t fakeTask) map[string]any {
	m := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"createdAt":   t.createdAt,
	}
	if t.Category != nil {
		m["category"] = t.Category
	}
	return m
}

func (b *FakeBackend) listTasks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	ids := make([]int64, 0, len(b.tasks))
	for id := range b.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, taskJSON(b.tasks[id]))
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) getTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	t, ok := b.tasks[id]
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (b *FakeBackend) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	b.nextID++
	t := fakeTask{
		Task:      service.Task{ID: b.nextID, Title: in.Title, Description: in.Description, Completed: in.Completed},
		createdAt: time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
	}
	if c, ok := b.cats[in.CategoryID]; ok {
		t.Category = &c
	}
	b.tasks[t.ID] = t
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, taskJSON(t))
}

func (b *FakeBackend) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	id := pathID(r)
	b.mu.Lock()
	t, ok := b.tasks[id]
	if !ok {
		b.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	t.Title, t.Description, t.Completed = in.Title, in.Description, in.Completed
	if c, ok := b.cats[in.CategoryID]; ok {
		t.Category = &c
	}
	b.tasks[id] = t
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (b *FakeBackend) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	_, ok := b.tasks[id]
	delete(b.tasks, id)
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (b *FakeBackend) toggleTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	id := pathID(r)
	b.mu.Lock()
	t, ok := b.tasks[id]
	if ok {
		t.Completed = body.Completed
		b.tasks[id] = t
	}
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (b *FakeBackend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]service.Category, 0, len(b.cats))
	for _, c := range b.cats {
		out = append(out, c)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, b.AddCategory(in.Name))
}

func (b *FakeBackend) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	id := pathID(r)
	b.mu.Lock()
	c, ok := b.cats[id]
	if ok {
		c.Name = in.Name
		b.cats[id] = c
	}
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (b *FakeBackend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	_, ok := b.cats[id]
	delete(b.cats, id)
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, msg)
}
