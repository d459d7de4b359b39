// Package hubdb is a minimal client for the HubSpot HubDB v3 draft-row API:
// list, purge and create draft rows, then publish the draft.
package hubdb

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
)

const (
	DefaultBaseURL = "https://api.hubapi.com/cms/v3/hubdb/tables"

	// MaxListLimit is the largest page HubDB returns for a row listing.
	MaxListLimit = 1000
	// MaxBatchSize is the most ids or rows HubDB accepts in one batch call.
	MaxBatchSize = 100

	maxErrorBody = 1024
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubdb %s %s: http %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Row is a draft row as returned by the list endpoint.
type Row struct {
	ID     string                 `json:"id"`
	Values map[string]interface{} `json:"values"`
}

// RowPage is one page of a draft row listing. Next is empty on the last page.
type RowPage struct {
	Rows []Row
	Next string
}

type Options struct {
	BaseURL            string
	Token              string
	TableID            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// OnResponse, when set, is called after every request with the operation
	// name and the HTTP status (0 on transport failure).
	OnResponse func(op string, status int, elapsed time.Duration)
}

// Client talks to a single HubDB table.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	tableID    string
	onResponse func(op string, status int, elapsed time.Duration)
}

func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &Client{
		http:       &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    strings.TrimRight(base, "/"),
		token:      opts.Token,
		tableID:    opts.TableID,
		onResponse: opts.OnResponse,
	}
}

func (c *Client) TableID() string {
	return c.tableID
}

type listResponse struct {
	Results []Row `json:"results"`
	Paging  struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListRows fetches one page of draft rows starting at the after cursor.
func (c *Client) ListRows(ctx context.Context, after string) (RowPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(MaxListLimit))
	if after != "" {
		q.Set("after", after)
	}

	var resp listResponse
	if err := c.do(ctx, "list", http.MethodGet, "/rows/draft?"+q.Encode(), nil, &resp); err != nil {
		return RowPage{}, err
	}
	return RowPage{Rows: resp.Results, Next: resp.Paging.Next.After}, nil
}

// PurgeRows permanently deletes the given draft rows.
func (c *Client) PurgeRows(ctx context.Context, ids []string) error {
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("purge batch of %d ids exceeds limit of %d", len(ids), MaxBatchSize)
	}
	body := struct {
		Inputs []string `json:"inputs"`
	}{Inputs: ids}
	return c.do(ctx, "purge", http.MethodPost, "/rows/draft/batch/purge", body, nil)
}

// CreateRows inserts rows into the draft table.
func (c *Client) CreateRows(ctx context.Context, rows []models.TargetRow) error {
	if len(rows) > MaxBatchSize {
		return fmt.Errorf("create batch of %d rows exceeds limit of %d", len(rows), MaxBatchSize)
	}
	body := struct {
		Inputs []models.TargetRow `json:"inputs"`
	}{Inputs: rows}
	return c.do(ctx, "create", http.MethodPost, "/rows/draft/batch/create", body, nil)
}

// Publish promotes the draft table to the live table.
func (c *Client) Publish(ctx context.Context) error {
	return c.do(ctx, "publish", http.MethodPost, "/draft/publish", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.tableID) + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return fmt.Errorf("hubdb %s request: %w", op, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: strings.SplitN(path, "?", 2)[0], StatusCode: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.onResponse != nil {
		c.onResponse(op, status, time.Since(start))
	}
}
