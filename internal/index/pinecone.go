package index

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

	"github.com/cenkalti/backoff/v4"
)

// APIVersion pins the index wire schema.
const APIVersion = "2024-07"

// defaultPageSize is the per-page limit used when listing ids.
const defaultPageSize = 100

// Pinecone talks to a Pinecone-compatible serverless index over HTTP.
// Read operations (list, fetch, query) retry with bounded exponential
// backoff on transport failures; writes propagate immediately.
type Pinecone struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPinecone creates a client for the index at baseURL, authenticated
// with the static apiKey header.
func NewPinecone(baseURL, apiKey string) (*Pinecone, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("index base URL not set")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("index API key not set")
	}
	return &Pinecone{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Upsert writes records in one batch. Overwrite-by-id semantics come from
// the remote index.
func (p *Pinecone) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	body := map[string]any{"vectors": records}
	return p.do(ctx, http.MethodPost, "/vectors/upsert", body, nil)
}

// DeleteBySource removes every record whose metadata sourceId equals the
// given id.
func (p *Pinecone) DeleteBySource(ctx context.Context, sourceID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"sourceId": map[string]any{"$eq": sourceID},
		},
	}
	return p.do(ctx, http.MethodPost, "/vectors/delete", body, nil)
}

type listPage struct {
	Vectors []struct {
		ID string `json:"id"`
	} `json:"vectors"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// ListIDs returns every record id in the index, following pagination
// cursors until the final page.
func (p *Pinecone) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	token := ""
	for {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(defaultPageSize))
		if token != "" {
			q.Set("paginationToken", token)
		}

		var page listPage
		err := p.withReadRetry(ctx, func() error {
			return p.do(ctx, http.MethodGet, "/vectors/list?"+q.Encode(), nil, &page)
		})
		if err != nil {
			return nil, err
		}

		for _, v := range page.Vectors {
			ids = append(ids, v.ID)
		}
		if page.Pagination.Next == "" {
			return ids, nil
		}
		token = page.Pagination.Next
	}
}

type fetchResponse struct {
	Vectors map[string]Record `json:"vectors"`
}

// FetchByIDs returns the stored records for the given ids, keyed by id.
// Ids unknown to the index are absent from the result.
func (p *Pinecone) FetchByIDs(ctx context.Context, ids []string) (map[string]Record, error) {
	if len(ids) == 0 {
		return map[string]Record{}, nil
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var resp fetchResponse
	err := p.withReadRetry(ctx, func() error {
		return p.do(ctx, http.MethodGet, "/vectors/fetch?"+q.Encode(), nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Vectors == nil {
		return map[string]Record{}, nil
	}
	return resp.Vectors, nil
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Query returns up to topK matches ranked by descending similarity score.
func (p *Pinecone) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}

	var resp queryResponse
	err := p.withReadRetry(ctx, func() error {
		return p.do(ctx, http.MethodPost, "/query", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Health probes the index with a minimal list request.
func (p *Pinecone) Health(ctx context.Context) error {
	var page listPage
	return p.do(ctx, http.MethodGet, "/vectors/list?limit=1", nil, &page)
}

// do performs one HTTP exchange against the index. Transport failures map
// to ErrUnavailable, non-2xx statuses to ErrRejected.
func (p *Pinecone) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("X-Pinecone-API-Version", APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s",
			ErrRejected, method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrRejected, err)
		}
	}
	return nil
}

// withReadRetry retries a read operation with exponential backoff while it
// fails with ErrUnavailable. Rejections are permanent. Writes deliberately
// bypass this: a failed save or delete must surface to the caller at once.
func (p *Pinecone) withReadRetry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 15 * time.Second

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}
