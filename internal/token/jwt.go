// Package token covers room access tokens: minting/verifying the HS256
// JWT the room service expects, and the client for the token-issuing
// endpoint.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("malformed token")
	ErrSignature = errors.New("bad token signature")
	ErrExpired   = errors.New("token expired")
)

// Grants is the room permission set embedded in the token.
type Grants struct {
	Room           string `json:"room"`
	RoomJoin       bool   `json:"roomJoin"`
	CanPublish     bool   `json:"canPublish"`
	CanSubscribe   bool   `json:"canSubscribe"`
	CanPublishData bool   `json:"canPublishData"`
}

// Claims is the access-token payload.
type Claims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Name      string `json:"name,omitempty"`
	NotBefore int64  `json:"nbf"`
	ExpiresAt int64  `json:"exp"`
	Video     Grants `json:"video"`
}

// Mint signs an access token granting full participation in room for
// the given identity.
func Mint(apiKey, apiSecret, room, identity, name string, ttl time.Duration) (string, error) {
	if apiKey == "" || apiSecret == "" {
		return "", errors.New("api key/secret required")
	}
	now := time.Now()
	claims := Claims{
		Issuer:    apiKey,
		Subject:   identity,
		Name:      name,
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
		Video: Grants{
			Room:           room,
			RoomJoin:       true,
			CanPublish:     true,
			CanSubscribe:   true,
			CanPublishData: true,
		},
	}

	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	signing := b64(header) + "." + b64(payload)
	return signing + "." + b64(sign(signing, apiSecret)), nil
}

// Verify checks the signature and expiry and returns the claims.
func Verify(tok, apiSecret string) (*Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	signing := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !hmac.Equal(sig, sign(signing, apiSecret)) {
		return nil, ErrSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return nil, ErrExpired
	}
	return &claims, nil
}

func sign(signing, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signing))
	return mac.Sum(nil)
}

func b64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
