// Package main implements the container liveness probe for the registry
// server. It exits 0 when the target endpoint answers 2xx within the
// timeout and 1 otherwise.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		url     string
		timeout time.Duration
	)
	flag.StringVar(&url, "url", "http://localhost:8080/healthz", "Endpoint to probe")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "Probe timeout")
	flag.Parse()

	// Positional form kept for container HEALTHCHECK one-liners.
	if args := flag.Args(); len(args) == 1 {
		url = args[0]
	}

	if err := probe(url, timeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func probe(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
	}
	return nil
}
