package rostergen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
)

// Client talks to the squad HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Healthy checks that /healthz answers 200.
func (c *Client) Healthy(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// SubmitSignup posts one signup.
func (c *Client) SubmitSignup(ctx context.Context, s model.Signup) error {
	resp, err := c.do(ctx, http.MethodPost, "/signups", s)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	return expect(resp, http.StatusCreated, http.StatusOK)
}

// ClearSignups empties the service roster.
func (c *Client) ClearSignups(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, "/signups", nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	return expect(resp, http.StatusOK)
}

// RequestAllocation asks for an allocation of the current roster.
func (c *Client) RequestAllocation(ctx context.Context, requestID string) (service.Ticket, error) {
	resp, err := c.do(ctx, http.MethodPost, "/allocations", map[string]string{"request_id": requestID})
	if err != nil {
		return service.Ticket{}, err
	}
	defer closeBody(resp)
	if err := expect(resp, http.StatusAccepted, http.StatusOK); err != nil {
		return service.Ticket{}, err
	}
	var t service.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return service.Ticket{}, fmt.Errorf("decode ticket: %w", err)
	}
	return t, nil
}

// Allocation fetches a job record.
func (c *Client) Allocation(ctx context.Context, id string) (repository.JobRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/allocations/"+id, nil)
	if err != nil {
		return repository.JobRecord{}, err
	}
	defer closeBody(resp)
	if err := expect(resp, http.StatusOK); err != nil {
		return repository.JobRecord{}, err
	}
	var rec repository.JobRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return repository.JobRecord{}, fmt.Errorf("decode job: %w", err)
	}
	return rec, nil
}

// Await polls a job until it leaves the pending state.
func (c *Client) Await(ctx context.Context, id string, every time.Duration) (repository.JobRecord, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		rec, err := c.Allocation(ctx, id)
		if err != nil {
			return repository.JobRecord{}, err
		}
		if rec.Status != repository.StatusPending {
			return rec, nil
		}
		select {
		case <-ctx.Done():
			return rec, fmt.Errorf("await %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func expect(resp *http.Response, codes ...int) error {
	for _, c := range codes {
		if resp.StatusCode == c {
			return nil
		}
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpected, resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
