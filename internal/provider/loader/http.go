package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"
)

// maxLayoutBytes bounds remote layout bodies.
const maxLayoutBytes = 4 << 20

// StatusError reports a non-2xx layout response. A 404 matches fs.ErrNotExist
// so providers can fall through to the next candidate source.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider loader: %s: unexpected status %s", e.URL, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == fs.ErrNotExist && e.Code == http.StatusNotFound
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration, headers http.Header) ([]byte, error) {
	if client == nil {
		return nil, errors.New("provider loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("provider loader: url is required")
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("provider loader: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider loader: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLayoutBytes))
	if err != nil {
		return nil, fmt.Errorf("provider loader: read body: %w", err)
	}
	return data, nil
}
