package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:37780"
	httpTimeout      = 5 * time.Second
)

// Client talks to a running flashdeck server. It keeps the session cookie
// from Login in a jar, so calls after Login are authenticated.
type Client struct {
	http      *http.Client
	serverURL string
}

// NewClient creates a new API client for serverURL. An empty serverURL
// falls back to FLASHDECK_URL, then http://127.0.0.1:37780.
func NewClient(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("FLASHDECK_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	jar, _ := cookiejar.New(nil) // never errors with nil options
	return &Client{
		http:      &http.Client{Timeout: httpTimeout, Jar: jar},
		serverURL: serverURL,
	}
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	resp, err := c.http.Post(c.serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Health is the server's /api/health report.
type Health struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"`
	DB      bool    `json:"db"`
	DBPath  string  `json:"db_path"`
}

// Health fetches the server's health report.
func (c *Client) Health() (*Health, error) {
	var h Health
	if err := c.getJSON("/api/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Login starts a session for username.
func (c *Client) Login(username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	_, err := c.Post("/api/sessions", body)
	return err
}

// Streak is the server's view of the logged-in user's streak.
type Streak struct {
	Days   int  `json:"days"`
	Active bool `json:"active"`
}

// Streak fetches the logged-in user's streak.
func (c *Client) Streak() (*Streak, error) {
	var s Streak
	if err := c.getJSON("/api/streak", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetSummary is one row of the dashboard.
type SetSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CardCount  int     `json:"card_count"`
	DueCount   int     `json:"due_count"`
	Unstudied  int     `json:"unstudied"`
	MeanPoints float64 `json:"mean_points"`
}

// Summary is the dashboard for the logged-in user.
type Summary struct {
	Streak   Streak       `json:"streak"`
	DueTotal int          `json:"due_total"`
	Sets     []SetSummary `json:"sets"`
}

// Summary fetches the logged-in user's dashboard.
func (c *Client) Summary() (*Summary, error) {
	var s Summary
	if err := c.getJSON("/api/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) getJSON(path string, v any) error {
	data, err := c.Get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
