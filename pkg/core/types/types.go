// Package types defines the shared conversation data model: turns,
// reply records, encoded provider requests, and the fixed Japanese
// strings the session protocol depends on.
package types

import "encoding/json"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Language codes passed to the translation upstream.
const (
	LangEnglish  = "EN"
	LangJapanese = "JA"
)

// TranscriptSentinel is the fixed transcript used when the model could
// not produce one for an audio submission ("voice was recognized"). It is
// compared exactly; rendering layers decide whether to show it.
const TranscriptSentinel = "音声を認識しました"

// ParseFailurePlaceholder is the Japanese reply used when a model reply
// could not be parsed and no translation was available ("could not parse
// the response").
const ParseFailurePlaceholder = "応答を解析できませんでした"

// Turn is one stored history entry. The Content of a model turn is the
// serialized ConversationRecord; the "parts" field name matches what the
// browser client round-trips.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"parts"`
}

// ConversationRecord is the canonical three-field reply record.
type ConversationRecord struct {
	UserTranscript string `json:"user_transcript"`
	ReplyEN        string `json:"ai_response_en"`
	ReplyJP        string `json:"ai_response_jp"`
}

// Serialize renders the record as the compact JSON stored in model turns.
func (r ConversationRecord) Serialize() string {
	raw, err := json.Marshal(r)
	if err != nil {
		// Three plain string fields cannot fail to marshal.
		return ""
	}
	return string(raw)
}

// ReplyTextFromContent reduces a stored model turn to the English reply
// text for replay to the model. Content that is not a serialized record,
// or one without an English reply, passes through unchanged.
func ReplyTextFromContent(content string) string {
	var record ConversationRecord
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		return content
	}
	if record.ReplyEN == "" {
		return content
	}
	return record.ReplyEN
}

// IsTranscriptSentinel reports whether s is exactly the no-transcript
// sentinel.
func IsTranscriptSentinel(s string) bool {
	return s == TranscriptSentinel
}

// PendingTurnInput is one submission before encoding: text, or base64
// audio with an optional MIME type.
type PendingTurnInput struct {
	Text          string
	AudioBase64   string
	AudioMIMEType string
}

// IsText reports whether the submission carries text.
func (p PendingTurnInput) IsText() bool {
	return p.Text != ""
}

// IsAudio reports whether the submission carries audio.
func (p PendingTurnInput) IsAudio() bool {
	return p.AudioBase64 != ""
}

// DisplayTurn is the reconciled record returned to the client, with the
// Japanese rendering of the user transcript when one was produced.
type DisplayTurn struct {
	UserTranscript   string `json:"user_transcript"`
	UserTranscriptJP string `json:"user_transcript_jp"`
	ReplyEN          string `json:"ai_response_en"`
	ReplyJP          string `json:"ai_response_jp"`
}

// FieldSet holds a decoded reply's string fields under their original
// key names, before alias resolution.
type FieldSet map[string]string

// EncodedTurn is a provider-ready request: the replayed history plus the
// pending submission as ordered contents.
type EncodedTurn struct {
	Contents []Content
}

// Content is one role-attributed group of parts.
type Content struct {
	Role  Role
	Parts []Part
}

// Part is a single text or audio fragment. Exactly one field is set.
type Part struct {
	Text  string
	Audio *AudioData
}

// AudioData is inline base64 audio with its MIME type.
type AudioData struct {
	MIMEType string
	Base64   string
}
