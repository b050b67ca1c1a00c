package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
)

// Heartbeat probes an HTTP heartbeat endpoint. Any 2xx response within
// the timeout passes; refusal, timeout, and non-2xx statuses fail.
func Heartbeat(url string, timeout time.Duration) check.Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context) check.Outcome {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return check.Failf("invalid heartbeat URL %s: %v", url, err)
		}

		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			// Connection refused or timeout: the service is not up.
			return check.Failf("unreachable: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return check.Failf("status %d from %s", resp.StatusCode, url)
		}
		return check.Passf("%d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}
}

// WaitForReady polls an HTTP endpoint with exponential backoff until it
// returns 2xx or the deadline expires. Used after starting a subprocess
// that needs time to begin serving.
func WaitForReady(ctx context.Context, url string, deadline time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	interval := 100 * time.Millisecond
	const maxInterval = 2 * time.Second

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready after %s", url, deadline)
		case <-time.After(interval):
		}

		interval *= 2
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}
