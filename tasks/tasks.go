// Package tasks is the thin wrapper around the backend's task endpoints.
// Validation and pagination math are the backend's business; this package
// only shapes requests and responses.
package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-task-client/api"
	"github.com/pkg/errors"
)

// Status is the lifecycle state of a task as reported by the backend.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Task struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	AssignedTo  int64      `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ListParams narrows a task listing. Zero values are omitted from the query.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   Status
}

func (p ListParams) query() string {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.Status != "" {
		values.Set("status", string(p.Status))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Page is one page of a task listing.
type Page struct {
	Count   int    `json:"count"`
	Results []Task `json:"results"`
}

// Service issues task CRUD calls through the authenticated client.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[tasks.NewService] client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	var page Page
	if err := s.client.Get(ctx, "/api/get-tasks/"+params.query(), &page); err != nil {
		return nil, errors.Wrap(err, "[tasks.Service.List]")
	}
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	var task Task
	if err := s.client.Get(ctx, fmt.Sprintf("/api/get-task/%d/", id), &task); err != nil {
		return nil, errors.Wrapf(err, "[tasks.Service.Get] %d", id)
	}
	return &task, nil
}

func (s *Service) Create(ctx context.Context, task Task) (*Task, error) {
	var created Task
	if err := s.client.Post(ctx, "/api/create-task/", task, &created); err != nil {
		return nil, errors.Wrap(err, "[tasks.Service.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int64, updates Task) (*Task, error) {
	var updated Task
	if err := s.client.Patch(ctx, fmt.Sprintf("/api/update-task/%d/", id), updates, &updated); err != nil {
		return nil, errors.Wrapf(err, "[tasks.Service.Update] %d", id)
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/api/delete-task/%d/", id), nil, nil); err != nil {
		return errors.Wrapf(err, "[tasks.Service.Delete] %d", id)
	}
	return nil
}

// Start moves a pending task into progress.
func (s *Service) Start(ctx context.Context, id int64) (*Task, error) {
	var started Task
	if err := s.client.Post(ctx, fmt.Sprintf("/api/start-task/%d/", id), nil, &started); err != nil {
		return nil, errors.Wrapf(err, "[tasks.Service.Start] %d", id)
	}
	return &started, nil
}

// Complete marks a task as completed via a partial update.
func (s *Service) Complete(ctx context.Context, id int64) (*Task, error) {
	return s.Update(ctx, id, Task{Status: StatusCompleted})
}
