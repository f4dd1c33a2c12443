package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	tok, err := Mint("key1", "secret1", "support", "user-1", "Ann Lee", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("want 3 token segments, got %d", len(parts))
	}

	claims, err := Verify(tok, "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Issuer != "key1" || claims.Subject != "user-1" || claims.Name != "Ann Lee" {
		t.Fatalf("claims = %+v", claims)
	}
	g := claims.Video
	if g.Room != "support" || !g.RoomJoin || !g.CanPublish || !g.CanSubscribe || !g.CanPublishData {
		t.Fatalf("grants = %+v", g)
	}
	if claims.ExpiresAt <= time.Now().Unix() {
		t.Fatalf("expiry %d not in the future", claims.ExpiresAt)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := Mint("key1", "secret1", "support", "user-1", "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(tok, "other"); !errors.Is(err, ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	tok, err := Mint("key1", "secret1", "support", "user-1", "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(tok, ".")
	parts[1] = "eyJzdWIiOiJldmlsIn0"
	if _, err := Verify(strings.Join(parts, "."), "secret1"); !errors.Is(err, ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := Mint("key1", "secret1", "support", "user-1", "", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(tok, "secret1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "a.b", "not a token at all", "a.b.c.d"} {
		if _, err := Verify(tok, "secret1"); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q) err = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestMintRequiresCredentials(t *testing.T) {
	if _, err := Mint("", "", "support", "user-1", "", time.Hour); err == nil {
		t.Fatal("want error for missing key/secret")
	}
}
