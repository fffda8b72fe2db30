// Command healthcheck probes the hastrava health endpoint for container
// healthchecks. It exits 0 when the endpoint answers 200.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const timeout = 2 * time.Second

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	base := "http://" + normalizeAddr(os.Getenv("HASTRAVA_LISTEN_ADDR"))
	os.Exit(check(ctx, &http.Client{Timeout: timeout}, base, os.Stderr))
}

// check returns the process exit code for a probe of base. Failures are
// described on w.
func check(ctx context.Context, client *http.Client, base string, w io.Writer) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/health", nil)
	if err != nil {
		fmt.Fprintln(w, "healthcheck:", err)
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(w, "healthcheck:", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintln(w, "healthcheck: unexpected status", resp.StatusCode)
		return 1
	}

	var report struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&report); err != nil || report.Status == "" {
		fmt.Fprintln(w, "healthcheck: malformed health report")
		return 1
	}

	return 0
}

// normalizeAddr ensures the healthcheck connects to loopback rather than the
// bind-all address. Docker containers bind 0.0.0.0 but the healthcheck runs
// inside the same container, so loopback is reachable and more correct.
func normalizeAddr(raw string) string {
	if raw == "" {
		return "127.0.0.1:8080"
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "127.0.0.1:8080"
	}

	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}

	return net.JoinHostPort(host, port)
}
