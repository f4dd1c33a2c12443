package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fraudline/roomlink/internal/config"
	"github.com/fraudline/roomlink/internal/token"
)

func testConfig() *config.Tokend {
	return &config.Tokend{
		Mode:      "release",
		APIKey:    "test-key",
		APISecret: "test-secret",
		RoomURL:   "wss://rooms.example.com",
		TokenTTL:  time.Hour,
	}
}

func TestTokenEndpoint(t *testing.T) {
	r := SetupRouter(testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token",
		strings.NewReader(`{"room":"support","identity":"user-1","name":"Ann"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		URL   string `json:"url"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.URL != "wss://rooms.example.com" {
		t.Fatalf("url = %q", resp.URL)
	}

	claims, err := token.Verify(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Video.Room != "support" || !claims.Video.RoomJoin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenEndpointGeneratesIdentity(t *testing.T) {
	r := SetupRouter(testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{"room":"support"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	claims, err := token.Verify(resp.Token, "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(claims.Subject, "user-") {
		t.Fatalf("generated identity = %q", claims.Subject)
	}
}

func TestTokenEndpointRequiresRoom(t *testing.T) {
	r := SetupRouter(testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{"identity":"user-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := SetupRouter(testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
