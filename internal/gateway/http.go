// Package gateway implements the course form's Gateway over the course API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin/internal/courseform"
	"github.com/noah-isme/course-admin/internal/dto"
	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
	"github.com/noah-isme/course-admin/pkg/middleware/requestid"
)

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// HTTPClient talks to the course API's /courses resource.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client for the API rooted at cfg.BaseURL (including the API prefix).
func NewHTTPClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{baseURL: cfg.BaseURL, token: cfg.Token, client: httpClient, logger: logger}
}

var _ courseform.Gateway = (*HTTPClient)(nil)

// envelope mirrors response.Envelope with a typed data payload.
type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

// List fetches every course in the order the API returns them.
func (c *HTTPClient) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Create stores a new course under its pre-assigned id.
func (c *HTTPClient) Create(ctx context.Context, course models.Course) error {
	return c.do(ctx, http.MethodPost, "/courses", dto.NewCoursePayload(course), nil)
}

// Update replaces the course with the given id.
func (c *HTTPClient) Update(ctx context.Context, id int64, course models.Course) error {
	payload := dto.NewCoursePayload(course)
	payload.ID = id
	return c.do(ctx, http.MethodPut, "/courses/"+strconv.FormatInt(id, 10), payload, nil)
}

// Delete removes the course with the given id.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.HeaderKey, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrUnavailable, "course api unreachable")
	}
	defer resp.Body.Close()

	c.logger.Debug("course api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode >= 300 {
		if env.Error != nil {
			if env.Error.Status == 0 {
				env.Error.Status = resp.StatusCode
			}
			return env.Error
		}
		return appErrors.New("UPSTREAM_ERROR", resp.StatusCode, fmt.Sprintf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}
