package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for responses call sites branch on.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Client talks to the goal-planner backend over HTTP. All blocking
// methods take a context; the client never retries a failed request.
type Client struct {
	BaseURL string // e.g., http://localhost:8001
	Token   string // bearer token from Login; empty means unauthenticated

	httpClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// tokenResponse is the body of POST /api/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token and stores it on the
// client for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.doInto(req, &tok); err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	c.Token = tok.AccessToken
	return tok.AccessToken, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, fullName, password string) (*User, error) {
	body := map[string]string{
		"username":  username,
		"email":     email,
		"full_name": fullName,
		"password":  password,
	}
	var user User
	if err := c.postJSON(ctx, "/api/register", body, &user); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &user, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Goals lists all goals belonging to the authenticated user.
func (c *Client) Goals(ctx context.Context) ([]Goal, error) {
	var goals []Goal
	if err := c.getJSON(ctx, "/api/goals", &goals); err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return goals, nil
}

// Goal fetches a single goal by id.
func (c *Client) Goal(ctx context.Context, id int64) (*Goal, error) {
	var goal Goal
	if err := c.getJSON(ctx, fmt.Sprintf("/api/goals/%d", id), &goal); err != nil {
		return nil, fmt.Errorf("fetching goal %d: %w", id, err)
	}
	return &goal, nil
}

// CreateGoal submits a new goal. The backend generates the weekly task
// breakdown asynchronously, so the returned goal may have no tasks yet.
func (c *Client) CreateGoal(ctx context.Context, in GoalCreate) (*Goal, error) {
	var goal Goal
	if err := c.postJSON(ctx, "/api/goals", in, &goal); err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}
	return &goal, nil
}

// UpdateGoal replaces a goal's name, description, and duration.
func (c *Client) UpdateGoal(ctx context.Context, id int64, in GoalCreate) (*Goal, error) {
	var goal Goal
	if err := c.putJSON(ctx, fmt.Sprintf("/api/goals/%d", id), in, &goal); err != nil {
		return nil, fmt.Errorf("updating goal %d: %w", id, err)
	}
	return &goal, nil
}

// DeleteGoal removes a goal. The backend cascades to its tasks and
// subtasks.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/goals/%d", c.BaseURL, id), nil)
	if err != nil {
		return err
	}
	if err := c.doInto(req, nil); err != nil {
		return fmt.Errorf("deleting goal %d: %w", id, err)
	}
	return nil
}

// GoalTasks lists a goal's tasks, ordered by ascending week number.
func (c *Client) GoalTasks(ctx context.Context, goalID int64) ([]Task, error) {
	var tasks []Task
	if err := c.getJSON(ctx, fmt.Sprintf("/api/goals/%d/tasks", goalID), &tasks); err != nil {
		return nil, fmt.Errorf("listing tasks for goal %d: %w", goalID, err)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].WeekNumber < tasks[j].WeekNumber
	})
	return tasks, nil
}

// TodayTasks lists tasks scheduled for the current day, filtered by the
// backend.
func (c *Client) TodayTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.getJSON(ctx, "/api/tasks/today", &tasks); err != nil {
		return nil, fmt.Errorf("listing today's tasks: %w", err)
	}
	return tasks, nil
}

// TaskSubTasks lists a task's subtasks in backend order.
func (c *Client) TaskSubTasks(ctx context.Context, taskID int64) ([]SubTask, error) {
	var subtasks []SubTask
	if err := c.getJSON(ctx, fmt.Sprintf("/api/tasks/%d/subtasks", taskID), &subtasks); err != nil {
		return nil, fmt.Errorf("listing subtasks for task %d: %w", taskID, err)
	}
	return subtasks, nil
}

// UpdateTaskStatus sets a task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int64, status Status) (*Task, error) {
	var task Task
	body := map[string]string{"status": string(status)}
	if err := c.putJSON(ctx, fmt.Sprintf("/api/tasks/%d", taskID), body, &task); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", taskID, err)
	}
	return &task, nil
}

// UpdateSubTaskStatus sets a subtask's status.
func (c *Client) UpdateSubTaskStatus(ctx context.Context, subtaskID int64, status Status) (*SubTask, error) {
	var subtask SubTask
	body := map[string]string{"status": string(status)}
	if err := c.putJSON(ctx, fmt.Sprintf("/api/subtasks/%d", subtaskID), body, &subtask); err != nil {
		return nil, fmt.Errorf("updating subtask %d: %w", subtaskID, err)
	}
	return &subtask, nil
}

// Dashboard fetches the pre-aggregated statistics payload.
func (c *Client) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.getJSON(ctx, "/api/dashboard", &stats); err != nil {
		return nil, fmt.Errorf("fetching dashboard: %w", err)
	}
	return &stats, nil
}

// CalendarExport downloads a goal's ICS calendar as an opaque payload.
// The suggested filename comes from Content-Disposition when present.
func (c *Client) CalendarExport(ctx context.Context, goalID int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/calendar/%d", c.BaseURL, goalID), nil)
	if err != nil {
		return nil, "", err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("exporting calendar for goal %d: %w", goalID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("exporting calendar for goal %d: %w", goalID, responseError(resp))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading calendar payload: %w", err)
	}

	filename := fmt.Sprintf("goal_%d_calendar.ics", goalID)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return payload, filename, nil
}

// Request plumbing

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doInto(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doInto(req, out)
}

func (c *Client) doInto(req *http.Request, out any) error {
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// responseError maps an error response to a sentinel where one exists,
// preserving the backend's detail message.
func responseError(resp *http.Response) error {
	var detail struct {
		Detail string `json:"detail"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
		msg = detail.Detail
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	default:
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, msg)
	}
}
