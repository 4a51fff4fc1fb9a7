// Package freshservice is the read-only client for the Freshservice
// solutions (knowledge base) API. Every listing call classifies its result as
// OK, Forbidden, or Failed instead of surfacing an error, so the traversal
// above it can keep going with whatever it already has.
package freshservice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"freshkb-cli/internal/model"

	"go.uber.org/zap"
)

// Outcome classifies a single API call.
type Outcome int

const (
	// OutcomeOK means the call (or the whole pagination loop) completed.
	OutcomeOK Outcome = iota
	// OutcomeForbidden means the API answered 403; the caller has no access
	// to this resource. Partial results gathered before the refusal are kept.
	OutcomeForbidden
	// OutcomeFailed covers transport errors and any other non-2xx status.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "failed"
	}
}

const (
	perPage           = 100
	downloadChunkSize = 8192
	probeTimeout      = 10 * time.Second
)

// Client talks to one tenant's API with Basic auth derived from the API key.
type Client struct {
	domain     string
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient builds a client for {domain}.freshservice.com/api/v2. The
// timeout applies to every bulk call; the connection probe uses its own
// shorter bound.
func NewClient(domain, apiKey string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey + ":X"))
	return &Client{
		domain:     domain,
		baseURL:    fmt.Sprintf("https://%s.freshservice.com/api/v2", domain),
		authHeader: "Basic " + encoded,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Domain returns the tenant this client is bound to.
func (c *Client) Domain() string {
	return c.domain
}

// ValidateConnection asks for the authenticated agent's own record. This is
// the only call whose failure is meant to halt a run.
func (c *Client) ValidateConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agents/me", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusForbidden:
		return fmt.Errorf("permission denied: check that the API key user has knowledge base access")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("connection check failed: status %d: %s", resp.StatusCode, string(body))
	}
}

// Categories lists all solution categories.
func (c *Client) Categories() ([]model.Category, Outcome) {
	var payload struct {
		Categories []model.Category `json:"categories"`
	}
	outcome := c.getJSON("/solutions/categories", nil, &payload)
	switch outcome {
	case OutcomeForbidden:
		c.logger.Errorf("Permission denied for categories. Check KB access.")
	case OutcomeFailed:
		c.logger.Errorf("Error fetching categories")
	}
	return payload.Categories, outcome
}

// Folders lists the folders under one category.
func (c *Client) Folders(categoryID int64) ([]model.Folder, Outcome) {
	params := url.Values{}
	params.Set("category_id", strconv.FormatInt(categoryID, 10))

	var payload struct {
		Folders []model.Folder `json:"folders"`
	}
	outcome := c.getJSON("/solutions/folders", params, &payload)
	switch outcome {
	case OutcomeForbidden:
		c.logger.Errorf("Permission denied for folders in category %d.", categoryID)
	case OutcomeFailed:
		c.logger.Errorf("Error fetching folders for category %d", categoryID)
	}
	return payload.Folders, outcome
}

// Articles pages through the article listing for one scope, stopping when a
// page comes back shorter than the page size. A failed page ends the loop
// early; everything gathered up to that point is returned alongside the
// failing page's outcome.
func (c *Client) Articles(scope model.Scope) ([]model.ArticleStub, Outcome) {
	var articles []model.ArticleStub

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))
		if folderID, ok := scope.FolderID(); ok {
			params.Set("folder_id", strconv.FormatInt(folderID, 10))
		} else if categoryID, ok := scope.CategoryID(); ok {
			params.Set("category_id", strconv.FormatInt(categoryID, 10))
		}

		var payload struct {
			Articles []model.ArticleStub `json:"articles"`
		}
		outcome := c.getJSON("/solutions/articles", params, &payload)
		if outcome == OutcomeForbidden {
			c.logger.Errorf("Permission denied for articles. Check KB access.")
			return articles, outcome
		}
		if outcome == OutcomeFailed {
			c.logger.Errorf("Error fetching articles page %d", page)
			return articles, outcome
		}

		articles = append(articles, payload.Articles...)
		if len(payload.Articles) < perPage {
			return articles, OutcomeOK
		}
	}
}

// ArticleDetail fetches the full record for one article. Nil on any failure.
func (c *Client) ArticleDetail(id int64) (*model.ArticleDetail, Outcome) {
	var payload struct {
		Article *model.ArticleDetail `json:"article"`
	}
	outcome := c.getJSON(fmt.Sprintf("/solutions/articles/%d", id), nil, &payload)
	if outcome != OutcomeOK {
		c.logger.Errorf("Error fetching article details for %d: %s", id, outcome)
		return nil, outcome
	}
	if payload.Article == nil {
		c.logger.Errorf("Empty article payload for %d", id)
		return nil, OutcomeFailed
	}
	return payload.Article, OutcomeOK
}

// DownloadAttachment streams an attachment to destPath, creating parent
// directories as needed. Returns false (and logs) on any failure; the caller
// counts it and moves on.
func (c *Client) DownloadAttachment(att model.Attachment, destPath string) bool {
	downloadURL := att.AttachmentURL
	if downloadURL == "" {
		c.logger.Warnf("No download URL for attachment %d", att.ID)
		return false
	}
	downloadURL = c.resolveURL(downloadURL)

	req, err := http.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		c.logger.Errorf("Error downloading attachment %d: %v", att.ID, err)
		return false
	}
	// binary fetch: auth only, no content-type
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Error downloading attachment %d: %v", att.ID, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Errorf("Error downloading attachment %d: status %d", att.ID, resp.StatusCode)
		return false
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		c.logger.Errorf("Error creating directory for attachment %d: %v", att.ID, err)
		return false
	}

	file, err := os.Create(destPath)
	if err != nil {
		c.logger.Errorf("Error creating file for attachment %d: %v", att.ID, err)
		return false
	}
	defer file.Close()

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(file, resp.Body, buf); err != nil {
		c.logger.Errorf("Error writing attachment %d: %v", att.ID, err)
		return false
	}

	c.logger.Infof("Downloaded attachment: %s", destPath)
	return true
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
}

// resolveURL makes a possibly-relative attachment URL absolute against the
// API base.
func (c *Client) resolveURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return raw
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}

// getJSON performs one GET against the API and decodes the payload on 200.
func (c *Client) getJSON(path string, params url.Values, out interface{}) Outcome {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Errorf("Failed to create request for %s: %v", path, err)
		return OutcomeFailed
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Request failed for %s: %v", path, err)
		return OutcomeFailed
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Errorf("Failed to decode response for %s: %v", path, err)
			return OutcomeFailed
		}
		return OutcomeOK
	case resp.StatusCode == http.StatusForbidden:
		return OutcomeForbidden
	default:
		return OutcomeFailed
	}
}
