package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches room credentials from the token service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenRequest struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
}

// Credentials is the token service response: where to connect and the
// access token to present.
type Credentials struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// Fetch requests credentials for identity to join room.
func (c *Client) Fetch(ctx context.Context, room, identity, name string) (Credentials, error) {
	body, _ := json.Marshal(tokenRequest{Room: room, Identity: identity, Name: name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Credentials{}, fmt.Errorf("token service: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("token response: %w", err)
	}
	if creds.Token == "" {
		return Credentials{}, fmt.Errorf("token response: empty token")
	}
	return creds, nil
}
