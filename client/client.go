// Package client is a small client for the Canaima REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/pkg/errors"
)

type ErrUnexpectedStatusCode struct {
	Code   int
	Body   string
	ErrMsg string
}

func (err ErrUnexpectedStatusCode) StatusCode() int {
	return err.Code
}

func (err ErrUnexpectedStatusCode) Error() string {
	var errstr = fmt.Sprintf("Unexpected status code %d", err.Code)
	switch {
	case err.ErrMsg != "":
		errstr += ": " + err.ErrMsg
	case err.Body != "":
		errstr += ", body: " + err.Body
	}

	return errstr
}

// Client is a stateful API client. The token, if any, is sent as a bearer
// token on every request.
type Client struct {
	http.Client
	host  *url.URL
	token string
}

// NewClient makes a new client for the server at host, e.g.
// "https://cafecanaima.com".
func NewClient(host string) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse host URL")
	}

	var client = &Client{
		Client: http.Client{
			Timeout: 10 * time.Second,
		},
		host: u,
	}

	return client, nil
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// Host returns the stringified URL.
func (c *Client) Host() string {
	return c.host.String()
}

// Endpoint returns the API root.
func (c *Client) Endpoint() string {
	return c.Host() + "/api/v1"
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	r, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if r.StatusCode < 200 || r.StatusCode > 299 {
		// Start reading the body for the error.
		defer r.Body.Close()

		var unexp = ErrUnexpectedStatusCode{Code: r.StatusCode}

		b, err := ioutil.ReadAll(io.LimitReader(r.Body, 4096))
		if err == nil {
			var errResp canaima.ErrResponse
			if json.Unmarshal(b, &errResp); errResp.Error != "" {
				unexp.ErrMsg = errResp.Error
			} else {
				if len(b) > 100 {
					unexp.Body = string(b[:97]) + "..."
				} else {
					unexp.Body = string(b)
				}
			}
		}

		return nil, unexp
	}

	return r, nil
}

func (c *Client) DoJSON(req *http.Request, resp interface{}) error {
	q, err := c.Do(req)
	if err != nil {
		return err
	}
	defer q.Body.Close()

	if resp != nil && q.StatusCode != http.StatusNoContent {
		return json.NewDecoder(q.Body).Decode(resp)
	}

	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body, resp interface{}) error {
	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "Failed to encode body")
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint()+path, r)
	if err != nil {
		return errors.Wrap(err, "Failed to create request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.DoJSON(req, resp)
}

func (c *Client) Get(ctx context.Context, path string, resp interface{}, v url.Values) error {
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	return c.request(ctx, "GET", path, nil, resp)
}

func (c *Client) Post(ctx context.Context, path string, body, resp interface{}) error {
	return c.request(ctx, "POST", path, body, resp)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.request(ctx, "DELETE", path, nil, nil)
}
