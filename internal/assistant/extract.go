package assistant

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Extraction is the outcome of one reply strategy.
type Extraction struct {
	Text  string
	Found bool
}

func found(s string) Extraction { return Extraction{Text: s, Found: true} }

var notFound = Extraction{}

// Strategy tries to pull the reply text out of a provider payload.
type Strategy func(payload []byte) Extraction

// DefaultStrategies is the order in which reply shapes are tried.
var DefaultStrategies = []Strategy{
	StringField("reply"),
	StringField("response"),
	ChatCompletionContent,
	RawPayload,
}

// ExtractReply runs strategies in order and returns the first match,
// with one level of double-encoded {"reply": ...} unwrapped.
func ExtractReply(payload []byte, strategies []Strategy) string {
	for _, s := range strategies {
		if res := s(payload); res.Found {
			return unwrapReply(res.Text)
		}
	}
	return ""
}

// StringField matches a top-level non-empty string field.
func StringField(key string) Strategy {
	return func(payload []byte) Extraction {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(payload, &obj); err != nil {
			return notFound
		}
		raw, ok := obj[key]
		if !ok {
			return notFound
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return notFound
		}
		return found(s)
	}
}

// ChatCompletionContent matches the chat completions shape choices[0].message.content.
func ChatCompletionContent(payload []byte) Extraction {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil || len(resp.Choices) == 0 {
		return notFound
	}
	if c := resp.Choices[0].Message.Content; c != "" {
		return found(c)
	}
	return notFound
}

// RawPayload always matches; JSON payloads are compacted, anything else is used verbatim.
func RawPayload(payload []byte) Extraction {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err == nil {
		return found(buf.String())
	}
	return found(string(payload))
}

func unwrapReply(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return text
	}
	var inner struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(trimmed), &inner); err != nil || inner.Reply == "" {
		return text
	}
	return inner.Reply
}
