package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default endpoints of the task metadata service.
const (
	DefaultMetadataURL = "https://codein.withgoogle.com/api/program/2015/taskdefinition"
	DefaultRedirectURL = "https://codein.withgoogle.com/dashboard/task-instances"
	DefaultTimeout     = 10 * time.Second
)

// maxBodySize caps a task definition response.
const maxBodySize = 1 << 20

// Config holds task lookup settings.
type Config struct {
	Host          string           `yaml:"host"`          // host of task links in chat
	MetadataURL   string           `yaml:"metadata_url"`  // task definitions endpoint
	RedirectURL   string           `yaml:"redirect_url"`  // task instance pages
	FetchTimeout  time.Duration    `yaml:"fetch_timeout"` // per request
	Organizations map[int64]string `yaml:"organizations"` // added to the built-in registry
}

// DefaultConfig returns a Config pointing at the public Code-in site.
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		MetadataURL:  DefaultMetadataURL,
		RedirectURL:  DefaultRedirectURL,
		FetchTimeout: DefaultTimeout,
	}
}

// Client resolves task references and fetches task metadata.
type Client struct {
	metadataURL string
	redirectURL string
	extractor   *Extractor
	registry    *Registry
	httpClient  *http.Client
}

// NewClient creates a Client. Zero fields in cfg fall back to defaults.
func NewClient(cfg *Config) *Client {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	metadataURL := cfg.MetadataURL
	if metadataURL == "" {
		metadataURL = def.MetadataURL
	}
	redirectURL := cfg.RedirectURL
	if redirectURL == "" {
		redirectURL = def.RedirectURL
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = def.FetchTimeout
	}

	return &Client{
		metadataURL: strings.TrimSuffix(metadataURL, "/"),
		redirectURL: strings.TrimSuffix(redirectURL, "/"),
		extractor:   NewExtractor(cfg.Host),
		registry:    NewRegistry(cfg.Organizations),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Extractor returns the extractor matching the client's link host.
func (c *Client) Extractor() *Extractor {
	return c.extractor
}

// taskDefinition is the JSON shape of a task definition. Pointer fields are
// required.
type taskDefinition struct {
	Name            *string `json:"name"`
	Days            *int    `json:"time_to_complete_in_days"`
	Categories      []int   `json:"categories"`
	OrganizationID  *int64  `json:"organization_id"`
	IsBeginner      bool    `json:"is_beginner"`
	ClaimedCount    int     `json:"claimed_count"`
	CompletedCount  int     `json:"completed_count"`
	InProgressCount int     `json:"in_progress_count"`
	MaxInstances    *int    `json:"max_instances"`
}

// FetchRecord retrieves the task with the given canonical ID.
func (c *Client) FetchRecord(ctx context.Context, id string) (*TaskRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/", c.metadataURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrFetch, err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: response for task %s exceeds %d bytes", ErrFetch, id, maxBodySize)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d for task %s", ErrFetch, resp.StatusCode, id)
	}

	return c.parseRecord(id, body)
}

func (c *Client) parseRecord(id string, body []byte) (*TaskRecord, error) {
	var def taskDefinition
	if err := json.Unmarshal(body, &def); err != nil {
		return nil, fmt.Errorf("%w: decode task %s: %w", ErrParse, id, err)
	}

	switch {
	case def.Name == nil:
		return nil, fmt.Errorf("%w: task %s: missing name", ErrParse, id)
	case def.Days == nil:
		return nil, fmt.Errorf("%w: task %s: missing time_to_complete_in_days", ErrParse, id)
	case def.OrganizationID == nil:
		return nil, fmt.Errorf("%w: task %s: missing organization_id", ErrParse, id)
	case def.MaxInstances == nil:
		return nil, fmt.Errorf("%w: task %s: missing max_instances", ErrParse, id)
	}

	if *def.Days < 0 || *def.MaxInstances < 0 || def.ClaimedCount < 0 ||
		def.CompletedCount < 0 || def.InProgressCount < 0 {
		return nil, fmt.Errorf("%w: task %s: negative count", ErrParse, id)
	}

	org, ok := c.registry.Name(*def.OrganizationID)
	if !ok {
		return nil, fmt.Errorf("%w: task %s: unknown organization %d", ErrParse, id, *def.OrganizationID)
	}

	cats := make([]Category, 0, len(def.Categories))
	for _, code := range def.Categories {
		cat := Category(code)
		if !cat.Valid() {
			return nil, fmt.Errorf("%w: task %s: unknown category %d", ErrParse, id, code)
		}
		cats = append(cats, cat)
	}

	return &TaskRecord{
		ID:              id,
		Title:           *def.Name,
		DaysToComplete:  *def.Days,
		Categories:      cats,
		Organization:    org,
		IsBeginner:      def.IsBeginner,
		ClaimedCount:    def.ClaimedCount,
		CompletedCount:  def.CompletedCount,
		InProgressCount: def.InProgressCount,
		MaxInstances:    *def.MaxInstances,
	}, nil
}

// Ping checks that the metadata endpoint answers HTTP at all. Any status
// below 500 counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.metadataURL+"/", nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: HTTP %d from %s", ErrFetch, resp.StatusCode, c.metadataURL)
	}
	return nil
}
