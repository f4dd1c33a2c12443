package wire

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fraudline/roomlink/internal/domain"
)

// Topics multiplexed over the single data-publish primitive.
const (
	TopicChat      = "chat"
	TopicBootstrap = "bootstrap"
)

// chatPayload is the canonical wire shape. The encoder always emits
// exactly these four keys; the synonym keys are decode-only.
type chatPayload struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Encode marshals a chat message to its canonical UTF-8 JSON form with
// the timestamp in seconds since epoch.
func Encode(m domain.ChatMessage) []byte {
	b, _ := json.Marshal(chatPayload{
		ID:        m.ID,
		From:      m.From,
		Text:      m.Text,
		Timestamp: unixSeconds(m.At),
	})
	return b
}

// EncodeBootstrap marshals the one-shot context handoff.
func EncodeBootstrap(p domain.BootstrapPayload) []byte {
	b, _ := json.Marshal(p)
	return b
}

// Decode turns inbound bytes into a ChatMessage. It is total: an
// undecodable payload is surfaced as a best-effort plain-text message
// attributed to fallbackFrom, never dropped.
//
// Resolution order, first success wins:
//  1. canonical object shape with synonym keys (from/sender/name,
//     text/message, timestamp as float, int, numeric string or date)
//  2. generic key-value map with the same synonym resolution
//  3. raw bytes wrapped as plain text
func Decode(data []byte, fallbackFrom string) domain.ChatMessage {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		From      string          `json:"from"`
		Sender    string          `json:"sender"`
		Name      string          `json:"name"`
		Text      *string         `json:"text"`
		Message   *string         `json:"message"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err == nil && isObject(data) {
		m := domain.ChatMessage{
			ID:   decodeID(raw.ID),
			From: firstNonEmpty(raw.From, raw.Sender, raw.Name, fallbackFrom),
			At:   decodeTimestamp(raw.Timestamp),
		}
		switch {
		case raw.Text != nil:
			m.Text = *raw.Text
		case raw.Message != nil:
			m.Text = *raw.Message
		}
		return m
	}

	if obj := decodeLooseMap(data); obj != nil {
		return domain.ChatMessage{
			ID:   stringOr(obj, uuid.NewString(), "id"),
			From: stringOr(obj, fallbackFrom, "from", "sender", "name"),
			Text: stringOr(obj, "", "text", "message"),
			At:   looseTimestamp(obj["timestamp"]),
		}
	}

	return domain.ChatMessage{
		ID:   uuid.NewString(),
		From: fallbackFrom,
		Text: string(data),
		At:   time.Now(),
	}
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		t = time.Now()
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*float64(time.Second)))
}

func isObject(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func decodeID(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return uuid.NewString()
}

func decodeTimestamp(raw json.RawMessage) time.Time {
	var sec float64
	if json.Unmarshal(raw, &sec) == nil && sec > 0 {
		return fromUnixSeconds(sec)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if sec, err := strconv.ParseFloat(s, 64); err == nil && sec > 0 {
			return fromUnixSeconds(sec)
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now()
}

// decodeLooseMap handles objects whose fields defeat the typed decode,
// e.g. a numeric "from" or nested synonym values.
func decodeLooseMap(data []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

func looseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return fromUnixSeconds(t)
		}
	case string:
		if sec, err := strconv.ParseFloat(t, 64); err == nil && sec > 0 {
			return fromUnixSeconds(sec)
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Now()
}

func stringOr(obj map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
