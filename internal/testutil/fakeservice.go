// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"taskcli/internal/notify"
	"taskcli/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = &service.Error{Kind: service.KindNotFound, Status: 404}

// FakeService is an in-memory implementation of service.Backend for testing.
// Injected errors of kind KindUnauthorized fire the OnUnauthorized
// subscribers, as the HTTP client does.
type FakeService struct {
	mu     sync.RWMutex
	users  map[string]string // username -> password
	tasks  []service.Task
	cats   []service.Category
	nextID int64
	calls  []string
	unauth []func()

	// Error injection for testing
	LoginErr          error
	RegisterErr       error
	ValidateErr       error
	MeErr             error
	ListTasksErr      error
	GetTaskErr        error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error
	ToggleTaskErr     error
	ListCategoriesErr error
	CreateCategoryErr error
	UpdateCategoryErr error
	DeleteCategoryErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{users: make(map[string]string)}
}

// AddUser adds an account.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddCategory adds a category and returns it.
func (f *FakeService) AddCategory(name string) service.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := service.Category{ID: f.nextID, Name: name}
	f.cats = append(f.cats, c)
	return c
}

// AddTask adds a task and returns it.
func (f *FakeService) AddTask(title string, categoryID int64, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := service.Task{
		ID:        f.nextID,
		Title:     title,
		Completed: completed,
		CreatedAt: service.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	t.Category = f.category(categoryID)
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of all stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Categories returns a copy of all stored categories.
func (f *FakeService) Categories() []service.Category {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Category, len(f.cats))
	copy(out, f.cats)
	return out
}

// Calls returns the names of the methods called so far.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// OnUnauthorized registers fn like rest.Client.OnUnauthorized.
func (f *FakeService) OnUnauthorized(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unauth = append(f.unauth, fn)
}

func (f *FakeService) call(name string, injected error) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	subs := append([]func(){}, f.unauth...)
	f.mu.Unlock()

	if injected == nil {
		return nil
	}
	if service.IsKind(injected, service.KindUnauthorized) {
		for _, fn := range subs {
			fn()
		}
	}
	return injected
}

// category must be called with f.mu held.
func (f *FakeService) category(id int64) *service.Category {
	for i := range f.cats {
		if f.cats[i].ID == id {
			c := f.cats[i]
			return &c
		}
	}
	return nil
}

// Login implements service.Auth. Wrong credentials answer like the
// backend: a 401.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	injected := f.LoginErr
	if injected == nil {
		f.mu.RLock()
		pw, ok := f.users[creds.Username]
		f.mu.RUnlock()
		if !ok || pw != creds.Password {
			injected = &service.Error{
				Kind: service.KindUnauthorized, Status: 401, Message: "Invalid username or password",
			}
		}
	}
	if err := f.call("Login", injected); err != nil {
		return service.LoginResult{}, err
	}
	return service.LoginResult{Token: "token-" + creds.Username, Message: "Login successful"}, nil
}

// Register implements service.Auth.
func (f *FakeService) Register(ctx context.Context, creds service.Credentials) (service.User, error) {
	if err := f.call("Register", f.RegisterErr); err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[creds.Username]; exists {
		return service.User{}, &service.Error{
			Kind: service.KindRequest, Status: 409, Message: "This username has already been taken",
		}
	}
	f.users[creds.Username] = creds.Password
	f.nextID++
	return service.User{ID: f.nextID, Username: creds.Username}, nil
}

// ValidateToken implements service.Auth.
func (f *FakeService) ValidateToken(ctx context.Context) error {
	return f.call("ValidateToken", f.ValidateErr)
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if err := f.call("Me", f.MeErr); err != nil {
		return service.User{}, err
	}
	return service.User{ID: 1, Username: "alice"}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.call("ListTasks", f.ListTasksErr); err != nil {
		return nil, err
	}
	return f.Tasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	if err := f.call("GetTask", f.GetTaskErr); err != nil {
		return service.Task{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if err := f.call("CreateTask", f.CreateTaskErr); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := service.Task{
		ID:          f.nextID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   service.Timestamp{Time: time.Now()},
		Category:    f.category(in.CategoryID),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	if err := f.call("UpdateTask", f.UpdateTaskErr); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = in.Title
			f.tasks[i].Description = in.Description
			f.tasks[i].Completed = in.Completed
			if c := f.category(in.CategoryID); c != nil {
				f.tasks[i].Category = c
			}
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	if err := f.call("DeleteTask", f.DeleteTaskErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id int64, completed bool) (service.Task, error) {
	if err := f.call("ToggleTask", f.ToggleTaskErr); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = completed
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// ListCategories implements service.Service.
func (f *FakeService) ListCategories(ctx context.Context) ([]service.Category, error) {
	if err := f.call("ListCategories", f.ListCategoriesErr); err != nil {
		return nil, err
	}
	return f.Categories(), nil
}

// CreateCategory implements service.Service.
func (f *FakeService) CreateCategory(ctx context.Context, in service.CategoryInput) (service.Category, error) {
	if err := f.call("CreateCategory", f.CreateCategoryErr); err != nil {
		return service.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := service.Category{ID: f.nextID, Name: in.Name}
	f.cats = append(f.cats, c)
	return c, nil
}

// UpdateCategory implements service.Service.
func (f *FakeService) UpdateCategory(ctx context.Context, id int64, in service.CategoryInput) (service.Category, error) {
	if err := f.call("UpdateCategory", f.UpdateCategoryErr); err != nil {
		return service.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cats {
		if f.cats[i].ID == id {
			f.cats[i].Name = in.Name
			return f.cats[i], nil
		}
	}
	return service.Category{}, ErrNotFound
}

// DeleteCategory implements service.Service.
func (f *FakeService) DeleteCategory(ctx context.Context, id int64) error {
	if err := f.call("DeleteCategory", f.DeleteCategoryErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cats {
		if c.ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Recorder is a notify.Notifier that keeps every message as "level: msg".
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

// Notify implements notify.Notifier.
func (r *Recorder) Notify(level notify.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, level.String()+": "+msg)
}

// Messages returns the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}
