// Package photos is a thin REST client for the Photos Library API. No
// generated Go client exists for this API, so the calls are made directly
// with an OAuth-authenticated HTTP client.
package photos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

const defaultBaseURL = "https://photoslibrary.googleapis.com/v1"

// Client calls the Photos Library endpoints. BaseURL is overridable for
// tests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
}

func NewClient(httpClient *http.Client, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		pageSize:   pageSize,
	}
}

// WithBaseURL points the client at a different API root. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// List pages through the library's media items until max items have been
// collected or the API stops returning a continuation token. Items are
// accumulated in API order.
func (c *Client) List(ctx context.Context, max int) ([]MediaItem, error) {
	var items []MediaItem
	pageToken := ""

	for {
		pageSize := c.pageSize
		if max > 0 && max-len(items) < pageSize {
			pageSize = max - len(items)
		}

		query := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.getJSON(ctx, "/mediaItems?"+query.Encode(), &page); err != nil {
			return nil, fmt.Errorf("failed to list media items: %w", err)
		}

		items = append(items, page.MediaItems...)
		logger.Debug("fetched media items page", "count", len(page.MediaItems), "total", len(items))

		if max > 0 && len(items) >= max {
			return items[:max], nil
		}
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get fetches a single media item by id.
func (c *Client) Get(ctx context.Context, id string) (*MediaItem, error) {
	var item MediaItem
	if err := c.getJSON(ctx, "/mediaItems/"+url.PathEscape(id), &item); err != nil {
		return nil, fmt.Errorf("failed to get media item %s: %w", id, err)
	}
	return &item, nil
}

// Upload sends raw bytes to the upload endpoint and returns the upload
// token referenced later by BatchCreate.
func (c *Client) Upload(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads", r)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Goog-Upload-Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, body)
	}

	uploadToken := strings.TrimSpace(string(body))
	if uploadToken == "" {
		return "", fmt.Errorf("upload succeeded but returned no upload token")
	}
	return uploadToken, nil
}

// UploadFile uploads one file from disk, resolving the content type from
// its extension.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("failed to close upload file", "path", path, "error", closeErr)
		}
	}()

	mimeType := MimeTypeForFile(path)
	logger.Debug("uploading file", "path", path, "mime_type", mimeType)
	return c.Upload(ctx, f, mimeType)
}

// BatchCreate finalizes uploaded bytes into library records.
func (c *Client) BatchCreate(ctx context.Context, items []NewMediaItem) ([]CreateResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to create")
	}

	payload, err := json.Marshal(batchCreateRequest{NewMediaItems: items})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mediaItems:batchCreate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("batch create request failed: %w", err)
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch create response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp.StatusCode, body)
	}

	var created batchCreateResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode batch create response: %w", err)
	}
	return created.NewMediaItemResults, nil
}

// NewMediaItemForFile builds the finalize record for one uploaded file.
func NewMediaItemForFile(path, uploadToken, description string) NewMediaItem {
	return NewMediaItem{
		Description: description,
		SimpleMediaItem: SimpleMediaItem{
			UploadToken: uploadToken,
			FileName:    filepath.Base(path),
		},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return httpError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func httpError(status int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	return fmt.Errorf("API returned status %d: %s", status, snippet)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Warn("failed to close response body", "error", err)
	}
}
