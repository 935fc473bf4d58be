// Package health reads the gateway's /health endpoint for CLI commands.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response mirrors the body of GET /health.
type Response struct {
	Status          string  `json:"status"`
	Timestamp       string  `json:"timestamp"`
	Uptime          float64 `json:"uptime"`
	Service         string  `json:"service"`
	Version         string  `json:"version"`
	DriveConnection string  `json:"driveConnection"`
	DriveAPIStatus  string  `json:"driveApiStatus"`
	DriveError      string  `json:"driveError,omitempty"`
	User            *struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"user,omitempty"`
	FolderCacheSize int `json:"folderCacheSize"`
}

// DriveConnected reports whether the gateway could reach Drive.
func (r *Response) DriveConnected() bool {
	return r.DriveConnection == "connected"
}

// UptimeDuration converts the reported uptime in seconds.
func (r *Response) UptimeDuration() time.Duration {
	return time.Duration(r.Uptime * float64(time.Second))
}

// Fetch calls GET <baseURL>/health.
func Fetch(ctx context.Context, client *http.Client, baseURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health endpoint returned %s", resp.Status)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &body, nil
}
