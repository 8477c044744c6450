package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"taskpad/internal/model"
)

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(strings.TrimSpace(id))
}

func missingID(fallback string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fallback}
}

func (c *Client) ListTasks(ctx context.Context) Result[[]model.Task] {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out, "Failed to get tasks"); err != nil {
		return Fail[[]model.Task](err)
	}
	if out == nil {
		out = []model.Task{}
	}
	return Ok(out)
}

func (c *Client) GetTask(ctx context.Context, id string) Result[model.Task] {
	const fallback = "Failed to get task"
	if strings.TrimSpace(id) == "" {
		return Fail[model.Task](missingID(fallback))
	}
	var out model.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out, fallback); err != nil {
		return Fail[model.Task](err)
	}
	return Ok(out)
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) Result[model.Task] {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &out, "Failed to create task"); err != nil {
		return Fail[model.Task](err)
	}
	return Ok(out)
}

// UpdateTask sends a partial update; only the non-nil fields of in are transmitted.
func (c *Client) UpdateTask(ctx context.Context, id string, in model.TaskInput) Result[model.Task] {
	const fallback = "Failed to update task"
	if strings.TrimSpace(id) == "" {
		return Fail[model.Task](missingID(fallback))
	}
	var out model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in, &out, fallback); err != nil {
		return Fail[model.Task](err)
	}
	return Ok(out)
}

func (c *Client) DeleteTask(ctx context.Context, id string) Result[Ack] {
	const fallback = "Failed to delete task"
	if strings.TrimSpace(id) == "" {
		return Fail[Ack](missingID(fallback))
	}
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, fallback); err != nil {
		return Fail[Ack](err)
	}
	return Ok(Ack{})
}
