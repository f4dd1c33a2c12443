package wire

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/fraudline/roomlink/internal/domain"
)

func TestEncodeCanonicalShape(t *testing.T) {
	at := time.Unix(1700000000, 500*int64(time.Millisecond))
	b := Encode(domain.ChatMessage{ID: "m1", From: "alice", Text: "hello", At: at})

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("encoded payload is not JSON: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("want exactly 4 keys, got %v", got)
	}
	if got["id"] != "m1" || got["from"] != "alice" || got["text"] != "hello" {
		t.Fatalf("unexpected fields: %v", got)
	}
	ts, ok := got["timestamp"].(float64)
	if !ok {
		t.Fatalf("timestamp is %T, want float64", got["timestamp"])
	}
	if math.Abs(ts-1700000000.5) > 1e-3 {
		t.Fatalf("timestamp = %f, want ~1700000000.5", ts)
	}
}

func TestEncodeZeroTimeDefaultsToNow(t *testing.T) {
	b := Encode(domain.ChatMessage{ID: "m1", From: "alice", Text: "hi"})
	var got chatPayload
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	now := float64(time.Now().Unix())
	if math.Abs(got.Timestamp-now) > 5 {
		t.Fatalf("timestamp %f not near now %f", got.Timestamp, now)
	}
}

func TestDecodeCanonical(t *testing.T) {
	raw := []byte(`{"id":"m1","from":"alice","text":"hello","timestamp":1700000000}`)
	m := Decode(raw, "server")
	if m.ID != "m1" || m.From != "alice" || m.Text != "hello" {
		t.Fatalf("got %+v", m)
	}
	if m.At.Unix() != 1700000000 {
		t.Fatalf("At = %v", m.At)
	}
}

func TestDecodeSynonymKeys(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantFrom string
		wantText string
	}{
		{"sender and message", `{"sender":"agent-7","message":"hi","timestamp":1700000000}`, "agent-7", "hi"},
		{"name key", `{"name":"bob","text":"yo"}`, "bob", "yo"},
		{"from wins over sender", `{"from":"a","sender":"b","text":"x"}`, "a", "x"},
		{"text wins over message", `{"from":"a","text":"t","message":"m"}`, "a", "t"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Decode([]byte(tc.raw), "server")
			if m.From != tc.wantFrom || m.Text != tc.wantText {
				t.Fatalf("got from=%q text=%q, want from=%q text=%q", m.From, m.Text, tc.wantFrom, tc.wantText)
			}
		})
	}
}

func TestDecodeTimestampVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int64
	}{
		{"float seconds", `{"text":"x","timestamp":1700000000.25}`, 1700000000},
		{"integer seconds", `{"text":"x","timestamp":1700000000}`, 1700000000},
		{"numeric string", `{"text":"x","timestamp":"1700000000"}`, 1700000000},
		{"rfc3339", `{"text":"x","timestamp":"2023-11-14T22:13:20Z"}`, 1700000000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Decode([]byte(tc.raw), "server")
			if m.At.Unix() != tc.want {
				t.Fatalf("At = %v (unix %d), want %d", m.At, m.At.Unix(), tc.want)
			}
		})
	}
}

func TestDecodeMissingTimestampIsRecent(t *testing.T) {
	m := Decode([]byte(`{"from":"a","text":"x"}`), "server")
	if d := time.Since(m.At); d < 0 || d > 5*time.Second {
		t.Fatalf("At = %v, want approximately now", m.At)
	}
}

func TestDecodeNumericID(t *testing.T) {
	m := Decode([]byte(`{"id":42,"from":"a","text":"x"}`), "server")
	if m.ID != "42" {
		t.Fatalf("ID = %q, want \"42\"", m.ID)
	}
}

func TestDecodeMissingIDGenerated(t *testing.T) {
	a := Decode([]byte(`{"from":"x","text":"one"}`), "server")
	b := Decode([]byte(`{"from":"x","text":"two"}`), "server")
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestDecodeLooseObject(t *testing.T) {
	// numeric "from" defeats the typed decode but survives the loose pass
	m := Decode([]byte(`{"from":123,"text":"odd"}`), "server")
	if m.From != "123" || m.Text != "odd" {
		t.Fatalf("got %+v", m)
	}
}

func TestDecodePlainTextFallback(t *testing.T) {
	m := Decode([]byte("just words"), "server")
	if m.Text != "just words" {
		t.Fatalf("Text = %q", m.Text)
	}
	if m.From != "server" {
		t.Fatalf("From = %q, want fallback identity", m.From)
	}
	if m.ID == "" {
		t.Fatal("expected a generated ID")
	}
}

func TestDecodeNonObjectJSONFallsBackToText(t *testing.T) {
	m := Decode([]byte(`[1,2,3]`), "server")
	if m.Text != "[1,2,3]" || m.From != "server" {
		t.Fatalf("got %+v", m)
	}
}

func TestRoundTrip(t *testing.T) {
	orig := domain.ChatMessage{
		ID:   "rt-1",
		From: "alice",
		Text: "héllo ✓",
		At:   time.Unix(1700000000, 250*int64(time.Millisecond)),
	}
	got := Decode(Encode(orig), "server")
	if got.ID != orig.ID || got.From != orig.From || got.Text != orig.Text {
		t.Fatalf("got %+v, want %+v", got, orig)
	}
	if d := got.At.Sub(orig.At); d < -time.Millisecond || d > time.Millisecond {
		t.Fatalf("timestamp drifted by %v", d)
	}
}

func TestEncodeBootstrap(t *testing.T) {
	p := domain.BootstrapPayload{
		Profile: domain.Profile{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"},
		Dispute: &domain.Dispute{Last4: "4242", Amount: 99.5, Currency: "USD", Merchant: "ACME"},
	}
	var got map[string]any
	if err := json.Unmarshal(EncodeBootstrap(p), &got); err != nil {
		t.Fatal(err)
	}
	profile, ok := got["profile"].(map[string]any)
	if !ok || profile["first_name"] != "Ann" {
		t.Fatalf("profile = %v", got["profile"])
	}
	dispute, ok := got["dispute"].(map[string]any)
	if !ok || dispute["last4"] != "4242" || dispute["merchant"] != "ACME" {
		t.Fatalf("dispute = %v", got["dispute"])
	}
}

func TestEncodeBootstrapOmitsEmptyDispute(t *testing.T) {
	b := EncodeBootstrap(domain.BootstrapPayload{
		Profile: domain.Profile{FirstName: "Ann"},
	})
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if _, present := got["dispute"]; present {
		t.Fatalf("dispute should be omitted: %s", b)
	}
}
