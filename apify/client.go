// Package apify provides the Apify platform dataset and key-value store
// used when the crawler runs as an actor.
package apify

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

	"github.com/fwojciec/medreg"
)

// DefaultBaseURL is the Apify API root.
const DefaultBaseURL = "https://api.apify.com"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 60 * time.Second

// DefaultMaxPayload is the largest request body sent to the dataset API,
// just under the platform's 9 MB limit.
const DefaultMaxPayload = 9_000_000

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 4 << 10

// Client calls the Apify API.
type Client struct {
	client     *http.Client
	baseURL    string
	token      string
	maxPayload int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the API token sent as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient uses the given client instead of a new one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithMaxPayload overrides DefaultMaxPayload.
func WithMaxPayload(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPayload = n
		}
	}
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, maxPayload: DefaultMaxPayload}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

// Dataset returns the dataset with the given id or name.
func (c *Client) Dataset(id string) *Dataset {
	return &Dataset{client: c, id: id}
}

// KeyValueStore returns the key-value store with the given id or name.
func (c *Client) KeyValueStore(id string) *KeyValueStore {
	return &KeyValueStore{client: c, id: id}
}

// do performs an API call and returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "invalid API request %s: %v", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(method, path, resp.StatusCode, msg)
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response of %s %s: %w", method, path, err)
	}
	return out, nil
}

// tooLargeError marks a request the API rejected for its size.
type tooLargeError struct {
	err error
}

func (e *tooLargeError) Error() string { return e.err.Error() }
func (e *tooLargeError) Unwrap() error { return e.err }

func statusError(method, path string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch code {
	case http.StatusNotFound:
		return medreg.Errorf(medreg.ENOTFOUND, "%s %s: HTTP %d: %s", method, path, code, msg)
	case http.StatusRequestEntityTooLarge:
		return &tooLargeError{medreg.Errorf(medreg.EINVALID, "%s %s: HTTP %d: %s", method, path, code, msg)}
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return medreg.Errorf(medreg.EINVALID, "%s %s: HTTP %d: %s", method, path, code, msg)
	}
	return fmt.Errorf("%s %s: HTTP %d: %s", method, path, code, msg)
}

// Ensure Dataset implements medreg.DatasetStore at compile time.
var _ medreg.DatasetStore = (*Dataset)(nil)

// Dataset is a platform dataset.
type Dataset struct {
	client *Client
	id     string
}

// PushData appends records, with one API call when they fit the payload
// limit. Larger batches, and batches the API rejects as too large, are
// split in half until they fit. A single record that is still too large
// fails with EINVALID.
func (d *Dataset) PushData(ctx context.Context, records ...medreg.Record) error {
	if len(records) == 0 {
		return nil
	}
	body, err := json.Marshal(records)
	if err != nil {
		return medreg.Errorf(medreg.EINVALID, "encode records: %v", err)
	}
	if len(body) > d.client.maxPayload && len(records) > 1 {
		return d.pushHalves(ctx, records)
	}

	_, err = d.client.do(ctx, http.MethodPost, "/v2/datasets/"+url.PathEscape(d.id)+"/items", body)
	var tooLarge *tooLargeError
	if errors.As(err, &tooLarge) && len(records) > 1 {
		return d.pushHalves(ctx, records)
	}
	return err
}

func (d *Dataset) pushHalves(ctx context.Context, records []medreg.Record) error {
	mid := len(records) / 2
	if err := d.PushData(ctx, records[:mid]...); err != nil {
		return err
	}
	return d.PushData(ctx, records[mid:]...)
}

// Ensure KeyValueStore implements medreg.InputSource at compile time.
var _ medreg.InputSource = (*KeyValueStore)(nil)

// InputKey is the record holding the actor input.
const InputKey = "INPUT"

// KeyValueStore is a platform key-value store.
type KeyValueStore struct {
	client *Client
	id     string
}

// Input reads the actor input record. A missing record yields an empty
// input.
func (s *KeyValueStore) Input(ctx context.Context) (*medreg.Input, error) {
	path := "/v2/key-value-stores/" + url.PathEscape(s.id) + "/records/" + InputKey
	body, err := s.client.do(ctx, http.MethodGet, path, nil)
	if medreg.ErrorCode(err) == medreg.ENOTFOUND {
		return &medreg.Input{}, nil
	} else if err != nil {
		return nil, err
	}

	var in medreg.Input
	if len(bytes.TrimSpace(body)) == 0 {
		return &in, nil
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, medreg.Errorf(medreg.EINVALID, "invalid actor input: %v", err)
	}
	return &in, nil
}
