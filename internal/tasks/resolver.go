package tasks

import (
	"context"
	"fmt"
	"net/http"
)

// Resolve returns the canonical task ID for ref. Canonical references are
// returned as is. Legacy references are looked up on the task instance page,
// whose redirects end at the canonical task link.
func (c *Client) Resolve(ctx context.Context, ref Reference) (string, error) {
	if ref.Shape == ShapeCanonical {
		return ref.ID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/", c.redirectURL, ref.ID), nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrResolution, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: instance %s: %w", ErrResolution, ref.ID, err)
	}
	_ = resp.Body.Close()

	final := resp.Request.URL.String()
	id, ok := c.extractor.CanonicalID(final)
	if !ok {
		return "", fmt.Errorf("%w: instance %s ended at %s", ErrResolution, ref.ID, final)
	}
	return id, nil
}
