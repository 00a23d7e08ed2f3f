package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cuemby/bastion/pkg/api"
)

// Client wraps the Bastion control API for CLI and hook usage. It talks
// HTTP over the daemon's unix socket; there is no network path.
type Client struct {
	http *http.Client
}

// NewClient creates a client for the daemon's control socket.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = api.DefaultSocketPath
	}
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// RegisterContainer registers a container and binds its init process.
func (c *Client) RegisterContainer(ctx context.Context, req *api.RegisterContainerRequest) (*api.ContainerResponse, error) {
	var resp api.ContainerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/containers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnregisterContainer removes a container registration.
func (c *Client) UnregisterContainer(ctx context.Context, id uint32) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/containers/%d", id), nil, nil)
}

// ListContainers returns all registered containers.
func (c *Client) ListContainers(ctx context.Context) ([]api.ContainerResponse, error) {
	var resp []api.ContainerResponse
	if err := c.do(ctx, http.MethodGet, "/v1/containers", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BindProcess binds a pid to a registered container.
func (c *Client) BindProcess(ctx context.Context, pid int32, containerID uint32) error {
	req := &api.BindProcessRequest{PID: pid, ContainerID: containerID}
	return c.do(ctx, http.MethodPost, "/v1/processes", req, nil)
}

// UnbindProcess removes a process binding on exit.
func (c *Client) UnbindProcess(ctx context.Context, pid int32) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/processes/%d", pid), nil, nil)
}

// ResolvePolicy returns the tier governing a pid.
func (c *Client) ResolvePolicy(ctx context.Context, pid int32) (*api.PolicyResponse, error) {
	var resp api.PolicyResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/policy/%d", pid), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Check dry-runs a hook decision against the daemon's live state.
func (c *Client) Check(ctx context.Context, req *api.CheckRequest) (*api.CheckResponse, error) {
	var resp api.CheckResponse
	if err := c.do(ctx, http.MethodPost, "/v1/check", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports daemon liveness and table occupancy.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/v1/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	// The host in the URL is ignored; the transport dials the socket.
	req, err := http.NewRequestWithContext(ctx, method, "http://bastion"+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("control socket request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
