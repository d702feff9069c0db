package core

import (
	"encoding/json"
	"strings"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

// StripFence removes a surrounding markdown code fence from raw model
// output, tolerating a language-tagged opener, an untagged opener, and
// asymmetric fencing (either delimiter may be missing).
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)

	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// ParseReply decodes raw model output into the reply's string fields.
// The fence is stripped first; the remainder must be a JSON object. String
// values are kept under their original key names so the reconciler can
// resolve naming variants; non-string values are ignored.
//
// The second return value reports a degraded transcript: the decode
// succeeded but user_transcript is empty or the known sentinel. That is a
// warning, not a failure.
func ParseReply(raw string) (types.FieldSet, bool, error) {
	text := StripFence(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false, NewParseError("model reply is not a JSON object")
	}
	if obj == nil {
		return nil, false, NewParseError("model reply is JSON null")
	}

	fields := make(types.FieldSet, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}

	transcript := fields["user_transcript"]
	degraded := transcript == "" || types.IsTranscriptSentinel(transcript)
	return fields, degraded, nil
}
