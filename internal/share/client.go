// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package share

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/logging"
)

const (
	// DefaultClientTimeout bounds any single share API call.
	DefaultClientTimeout = 10 * time.Second

	// maxResponseSize limits response bodies read from the share server.
	maxResponseSize = 4 * 1024 * 1024 // 4MB
)

// ErrNoBaseURL is returned when the client has no server address configured.
var ErrNoBaseURL = errors.New("share: server URL not configured")

// sharedClient pools connections across all share clients.
var sharedClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultClientTimeout,
}

// Client talks to a remote share server. It implements RecordStore, so code
// that publishes snapshots cannot tell a remote server from a local store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
}

// NewClient creates a share client for the given base URL, e.g.
// "http://127.0.0.1:8790".
func NewClient(baseURL string, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedClient,
		log:        log.With("share-client"),
	}
}

// ShareURL returns the public URL for a snapshot ID, or empty when no
// server is configured.
func (c *Client) ShareURL(id string) string {
	if c.baseURL == "" {
		return ""
	}
	return c.baseURL + "/v1/shares/" + id
}

// Create publishes a snapshot to the server.
func (c *Client) Create(snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	raw, status, err := c.do(http.MethodPost, "/v1/shares", body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return c.apiError(status, raw)
	}

	c.log.Infof("snapshot published | id=%s", snap.ID)
	return nil
}

// Fetch retrieves a snapshot by ID.
func (c *Client) Fetch(id string) (Snapshot, error) {
	raw, status, err := c.do(http.MethodGet, "/v1/shares/"+id, nil)
	if err != nil {
		return Snapshot{}, err
	}
	if status == http.StatusNotFound {
		return Snapshot{}, ErrShareNotFound
	}
	if status != http.StatusOK {
		return Snapshot{}, c.apiError(status, raw)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// IncrementViews bumps the view counter and returns the new count.
func (c *Client) IncrementViews(id string) (int, error) {
	raw, status, err := c.do(http.MethodPost, "/v1/shares/"+id+"/views", nil)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, ErrShareNotFound
	}
	if status != http.StatusOK {
		return 0, c.apiError(status, raw)
	}

	var resp viewsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("decoding views response: %w", err)
	}
	return resp.Views, nil
}

// Delete removes a snapshot using a TOTP admin code.
func (c *Client) Delete(id, adminCode string) error {
	req, err := c.newRequest(http.MethodDelete, "/v1/shares/"+id, nil)
	if err != nil {
		return err
	}
	req.Header.Set(adminCodeHeader, adminCode)

	raw, status, err := c.send(req)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return ErrShareNotFound
	}
	if status != http.StatusOK {
		return c.apiError(status, raw)
	}
	return nil
}

// do performs a request with a JSON body against the share server.
func (c *Client) do(method, path string, body []byte) ([]byte, int, error) {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return nil, 0, err
	}
	return c.send(req)
}

// newRequest builds a request with the client timeout applied.
func (c *Client) newRequest(method, path string, body []byte) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	// The client-level timeout on sharedClient bounds the whole request,
	// including the body read, so no per-request context is needed.
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send executes the request and reads the bounded response body.
func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("share request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// apiError turns an error response into a Go error, preferring the server's
// structured message over a raw body excerpt.
func (c *Client) apiError(status int, raw []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("share server returned %d: %s", status, payload.Error.Message)
	}
	return fmt.Errorf("share server returned %d: %s", status, excerptBody(raw, 200))
}

// excerptBody trims a body for inclusion in an error message.
func excerptBody(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
