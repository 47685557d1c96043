package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/davclient/credential"
	"github.com/xxxsen/davclient/protocol"
)

const defaultContentType = "application/octet-stream"

var errNoCredential = errors.New("credential not set")

var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		IdleConnTimeout:     20 * time.Second,
		MaxIdleConns:        5,
		MaxIdleConnsPerHost: 2,
	},
}

// Client issues webdav requests. It keeps no per-call state, one instance
// serves any number of entries concurrently.
type Client struct {
	c *config
}

func New(opts ...Option) *Client {
	c := &config{
		client: defaultHTTPClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Client{c: c}
}

// newRequest reads the credential snapshot once and attaches basic auth.
// Unset credentials fail here, before anything touches the network.
func (c *Client) newRequest(ctx context.Context, method string, target string, body io.Reader) (*http.Request, error) {
	cred, ok := credential.Current()
	if !ok {
		return nil, errNoCredential
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cred.User, cred.Pass)
	return req, nil
}

func (c *Client) propfindRaw(ctx context.Context, target string, extra ...string) ([]byte, error) {
	req, err := c.newRequest(ctx, "PROPFIND", target, strings.NewReader(protocol.PropfindBody(extra...)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", protocol.DepthValue)
	req.Header.Set("Content-Type", protocol.PropfindContentType)
	rsp, err := c.c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("status code not ok, code:%d", rsp.StatusCode)
	}
	return io.ReadAll(rsp.Body)
}

func (c *Client) propfind(ctx context.Context, target string, extra ...string) ([]protocol.RawResponse, error) {
	raw, err := c.propfindRaw(ctx, target, extra...)
	if err != nil {
		return nil, err
	}
	return protocol.ParseMultistatus(bytes.NewReader(raw))
}

func (c *Client) mkcol(ctx context.Context, target string) error {
	req, err := c.newRequest(ctx, "MKCOL", target, nil)
	if err != nil {
		return err
	}
	rsp, err := c.c.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	_, _ = io.Copy(io.Discard, rsp.Body)
	if rsp.StatusCode/100 != 2 {
		return fmt.Errorf("status code not ok, code:%d", rsp.StatusCode)
	}
	return nil
}

// get hands the body back to the caller, who must close it on every path.
func (c *Client) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	rsp, err := c.c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, rsp.Body)
		rsp.Body.Close()
		return nil, fmt.Errorf("status code not ok, code:%d", rsp.StatusCode)
	}
	return rsp.Body, nil
}

// put hands body to the request exactly once, a second wrap would corrupt
// what the server receives.
func (c *Client) put(ctx context.Context, target string, body io.Reader, length int64, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPut, target, body)
	if err != nil {
		return err
	}
	if len(contentType) == 0 {
		contentType = defaultContentType
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)
	rsp, err := c.c.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	_, _ = io.Copy(io.Discard, rsp.Body)
	if rsp.StatusCode/100 != 2 {
		return fmt.Errorf("status code not ok, code:%d", rsp.StatusCode)
	}
	return nil
}
