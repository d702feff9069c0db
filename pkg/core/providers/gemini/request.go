package gemini

import "github.com/kaiwa-go/kaiwa/pkg/core/types"

// geminiRequest is the Gemini API request format.
// Note: Gemini API uses camelCase for JSON field names.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiContent represents a content object in Gemini format.
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a single part within content.
type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

// geminiBlob represents inline binary data.
type geminiBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

// buildRequest converts an encoded turn to the Gemini wire format.
func buildRequest(turn *types.EncodedTurn) *geminiRequest {
	contents := make([]geminiContent, 0, len(turn.Contents))
	for _, c := range turn.Contents {
		contents = append(contents, geminiContent{
			Role:  string(c.Role),
			Parts: translateParts(c.Parts),
		})
	}
	return &geminiRequest{Contents: contents}
}

// translateParts converts encoded parts to Gemini parts.
func translateParts(parts []types.Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, part := range parts {
		if part.Audio != nil {
			out = append(out, geminiPart{
				InlineData: &geminiBlob{
					MIMEType: part.Audio.MIMEType,
					Data:     part.Audio.Base64,
				},
			})
			continue
		}
		out = append(out, geminiPart{Text: part.Text})
	}
	return out
}
