package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

// Client talks to a running daemon.
type Client struct {
	r *resty.Client
}

// NewClient returns a client for the daemon listening on socket.
func NewClient(socket string) *Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		},
	})
	client.SetBaseURL("http://wallfade")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "wallfade")
	return &Client{r: client}
}

func (c *Client) Status() (*StatusResponse, error) {
	result := StatusResponse{}
	res, err := c.r.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, fmt.Errorf("error contacting daemon: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error getting status: %s", res.Status())
	}
	return &result, nil
}

func (c *Client) Next() error {
	return c.post("/next", nil)
}

func (c *Client) Stop() error {
	return c.post("/stop", nil)
}

// Load replaces the daemon's wallpaper list with paths.
func (c *Client) Load(paths []string) error {
	return c.post("/load", paths)
}

func (c *Client) post(path string, body any) error {
	req := c.r.R()
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("error contacting daemon: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending %s: %s: %s", path, res.Status(), res.String())
	}
	return nil
}
