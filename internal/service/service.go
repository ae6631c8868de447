// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for authenticated backend operations.
// All REST calls made by commands go through this interface.
// Commands never import the HTTP layer directly.
type Service interface {
	// Me returns the signed-in user.
	Me(ctx context.Context) (User, error)

	// ListTasks returns all tasks visible to the signed-in user.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns one task by ID.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces the editable fields of a task.
	UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// ToggleTask sets the completion flag of a task.
	ToggleTask(ctx context.Context, id int64, completed bool) (Task, error)

	// ListCategories returns all categories.
	ListCategories(ctx context.Context) ([]Category, error)

	// CreateCategory creates a category.
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)

	// UpdateCategory renames a category.
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error)

	// DeleteCategory deletes a category.
	DeleteCategory(ctx context.Context, id int64) error
}

// Auth defines the credential operations used by the session.
type Auth interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)

	// Register creates a new account. It does not sign in.
	Register(ctx context.Context, creds Credentials) (User, error)

	// ValidateToken succeeds only while the current token is accepted.
	ValidateToken(ctx context.Context) error
}

// Backend is everything a command-line session needs from the server.
type Backend interface {
	Service
	Auth
}
