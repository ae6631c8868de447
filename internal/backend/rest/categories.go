package rest

import (
	"context"
	"fmt"
	"net/http"

	"taskcli/internal/service"
)

func categoryPath(id int64) string {
	return fmt.Sprintf("/categories/%d", id)
}

// ListCategories implements service.Service.
func (c *Client) ListCategories(ctx context.Context) ([]service.Category, error) {
	var cats []service.Category
	if err := c.get(ctx, "/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory implements service.Service.
func (c *Client) CreateCategory(ctx context.Context, in service.CategoryInput) (service.Category, error) {
	var cat service.Category
	if err := c.send(ctx, http.MethodPost, "/categories", in, &cat); err != nil {
		return service.Category{}, err
	}
	return cat, nil
}

// UpdateCategory implements service.Service.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in service.CategoryInput) (service.Category, error) {
	var cat service.Category
	if err := c.send(ctx, http.MethodPut, categoryPath(id), in, &cat); err != nil {
		return service.Category{}, err
	}
	return cat, nil
}

// DeleteCategory implements service.Service.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, categoryPath(id), nil, nil)
}
