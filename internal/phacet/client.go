package phacet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/config"
)

const snippetLimit = 512

// CredentialSource supplies the bearer token for outbound calls. In
// production that is the host's credential layer; tests use a static one.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticCredential is a fixed token, typically loaded from config.
type StaticCredential string

func (c StaticCredential) Token(ctx context.Context) (string, error) {
	if c == "" {
		return "", fmt.Errorf("phacet api token is not configured")
	}
	return string(c), nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
}

func NewClient(cfg config.PhacetConfig, creds CredentialSource) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
	}
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, "", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetTable(ctx context.Context, tableID string) (*Table, error) {
	var table Table
	if err := c.do(ctx, http.MethodGet, "/tables/"+tableID, nil, "", &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *Client) CreateRow(ctx context.Context, tableID, sessionID string, cells []CellValue) (map[string]any, error) {
	body := createRowRequest{SessionID: sessionID, Cells: cells}
	var row map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/tables/"+tableID+"/rows", body, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Client) UpdateRow(ctx context.Context, tableID, rowID string, cells []CellValue) (map[string]any, error) {
	body := updateRowRequest{Cells: cells}
	var row map[string]any
	if err := c.doJSON(ctx, http.MethodPut, "/tables/"+tableID+"/rows/"+rowID, body, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Client) GetRow(ctx context.Context, tableID, rowID string) (map[string]any, error) {
	var row map[string]any
	if err := c.do(ctx, http.MethodGet, "/tables/"+tableID+"/rows/"+rowID, nil, "", &row); err != nil {
		return nil, err
	}
	return row, nil
}

// GetCellDownloadURL returns the download-URL payload verbatim.
func (c *Client) GetCellDownloadURL(ctx context.Context, tableID, cellID string) (map[string]any, error) {
	var payload map[string]any
	path := "/tables/" + tableID + "/cells/" + cellID + "/download-file-url"
	if err := c.do(ctx, http.MethodGet, path, nil, "", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UploadFile posts a single file as multipart/form-data and returns the
// file id the service assigned.
func (c *Client) UploadFile(ctx context.Context, filename, contentType string, payload []byte) (string, error) {
	body, boundary := EncodeMultipart("file", filename, contentType, payload)

	var resp uploadResponse
	ct := "multipart/form-data; boundary=" + boundary
	if err := c.do(ctx, http.MethodPost, "/files", bytes.NewReader(body), ct, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &errors.UpstreamError{
			StatusCode: http.StatusOK,
			Method:     http.MethodPost,
			Path:       "/files",
			Snippet:    "upload response carried no file id",
		}
	}
	return resp.ID, nil
}

func (c *Client) RegisterEndpoint(ctx context.Context, reg EndpointRegistration) (*Endpoint, error) {
	var ep Endpoint
	if err := c.doJSON(ctx, http.MethodPost, "/webhooks/endpoints", reg, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

func (c *Client) DeleteEndpoint(ctx context.Context, endpointID string) error {
	return c.do(ctx, http.MethodDelete, "/webhooks/endpoints/"+endpointID, nil, "", nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(encoded), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("phacet api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		return &errors.UpstreamError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Snippet:    strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errors.UpstreamError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Snippet:    "malformed response body: " + err.Error(),
		}
	}
	return nil
}
