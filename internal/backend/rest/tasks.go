package rest

import (
	"context"
	"fmt"
	"net/http"

	"taskcli/internal/service"
)

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.get(ctx, "/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var t service.Task
	if err := c.get(ctx, taskPath(id), &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var t service.Task
	if err := c.send(ctx, http.MethodPost, "/tasks", in, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	var t service.Task
	if err := c.send(ctx, http.MethodPut, taskPath(id), in, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// ToggleTask implements service.Service.
func (c *Client) ToggleTask(ctx context.Context, id int64, completed bool) (service.Task, error) {
	body := struct {
		Completed bool `json:"completed"`
	}{completed}

	var t service.Task
	if err := c.send(ctx, http.MethodPatch, taskPath(id)+"/complete", body, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}
