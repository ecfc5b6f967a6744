// Package client 终端客户端：REST 调用、本地会话、仪表盘渲染
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"neontask/internal/domain"
)

const fallbackError = "SYSTEM ERROR: CONNECTION FAILED"

// APIError 服务端返回的失败；Message 是服务端 {error} 的文案，没有则用兜底文案
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type AuthResponse struct {
	Message string          `json:"message"`
	User    domain.UserView `json:"user"`
	Token   string          `json:"token"`
}

type Health struct {
	Status    string `json:"status"`
	System    string `json:"system"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type taskList struct {
	Count      int           `json:"count"`
	Operations []domain.Task `json:"operations"`
}

type taskEnvelope struct {
	Message   string      `json:"message"`
	Operation domain.Task `json:"operation"`
}

// NewTask POST /tasks 的请求体
type NewTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// TaskPatch PUT /tasks/:id 的请求体，nil 字段不发送
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// API base 形如 http://localhost:3001/api
type API struct {
	base  string
	http  *http.Client
	token string
}

func NewAPI(base string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{base: strings.TrimRight(base, "/"), http: hc}
}

func (a *API) SetToken(tok string) { a.token = tok }

func (a *API) Register(ctx context.Context, email, password, handle string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password, "handle": handle}
	if err := a.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := a.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListTasks(ctx context.Context, status, priority string) ([]domain.Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if priority != "" {
		q.Set("priority", priority)
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out taskList
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Operations, nil
}

func (a *API) CreateTask(ctx context.Context, in NewTask) (*domain.Task, error) {
	var out taskEnvelope
	if err := a.do(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out.Operation, nil
}

func (a *API) UpdateTask(ctx context.Context, id string, p TaskPatch) (*domain.Task, error) {
	var out taskEnvelope
	if err := a.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), p, &out); err != nil {
		return nil, err
	}
	return &out.Operation, nil
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	res, err := a.http.Do(req)
	if err != nil {
		return &APIError{Message: fallbackError}
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return &APIError{Status: res.StatusCode, Message: fallbackError}
	}

	if res.StatusCode >= 400 {
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return &APIError{Status: res.StatusCode, Message: eb.Error}
		}
		return &APIError{Status: res.StatusCode, Message: fallbackError}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsUnauthorized 401：本地 token 失效
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}
