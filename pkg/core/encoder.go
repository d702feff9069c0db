package core

import (
	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

// DefaultAudioMIMEType is used when a submission carries audio without an
// explicit MIME type. The browser recorder produces webm by default.
const DefaultAudioMIMEType = "audio/webm"

// systemPrompt is the behavioral contract sent with the first turn of a
// session: transcribe verbatim, reply only as the strict three-field JSON
// record, keep the English reply under 200 characters, no markup, always
// end with a question.
const systemPrompt = `You are an English conversation teacher. When you receive audio input, you MUST first transcribe EXACTLY what the user said in English, then respond in English.

CRITICAL: You must respond ONLY in valid JSON format with NO other text:
{
  "user_transcript": "The EXACT English words the user spoke (transcribe the audio accurately)",
  "ai_response_en": "Your English response to continue the conversation",
  "ai_response_jp": "Japanese translation of your English response"
}

RULES:
1. user_transcript MUST contain the actual English words from the audio - transcribe it accurately
2. If the audio is unclear, write what you heard as best as possible
3. Return ONLY the JSON object - no markdown, no code blocks, no explanations, no extra text
4. The JSON must be valid and parseable
5. RESPONSE LENGTH (STRICT): Your English response (ai_response_en) MUST be SHORT and MUST NOT exceed 200 characters (not words). Aim for 1-2 sentences maximum. If your response exceeds 200 characters, it will be rejected. Keep responses extremely brief and concise
6. NO MARKUP: STRICTLY PROHIBITED to use any markdown or formatting symbols such as asterisks (*), bold markers (**), or any other decorative markup in ai_response_en or ai_response_jp. Use plain text only
7. CONVERSATION FLOW: Always ask questions to the user to maintain conversation tempo and continuity. Prioritize keeping the conversation engaging and active
8. JSON FORMAT STRICT: You MUST maintain the exact JSON structure specified above. Do not deviate from this format under any circumstances`

// EncodeTurn converts a pending submission plus the running history into
// the provider-ready request. The system prompt is prepended only when the
// history is empty, so it appears at most once per session. Stored model
// turns holding a serialized record are replayed as their English reply
// text so the model reads its own prior utterances in natural form.
func EncodeTurn(pending types.PendingTurnInput, history []types.Turn) (*types.EncodedTurn, error) {
	if !pending.IsText() && !pending.IsAudio() {
		return nil, NewInvalidInputError("no audio or text provided")
	}

	contents := make([]types.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, types.Content{
			Role:  turn.Role,
			Parts: []types.Part{{Text: types.ReplyTextFromContent(turn.Content)}},
		})
	}

	firstTurn := len(history) == 0

	if pending.IsText() {
		text := pending.Text
		if firstTurn {
			text = systemPrompt + "\n\n" + text
		}
		contents = append(contents, types.Content{
			Role:  types.RoleUser,
			Parts: []types.Part{{Text: text}},
		})
		return &types.EncodedTurn{Contents: contents}, nil
	}

	mimeType := pending.AudioMIMEType
	if mimeType == "" {
		mimeType = DefaultAudioMIMEType
	}
	parts := make([]types.Part, 0, 2)
	if firstTurn {
		parts = append(parts, types.Part{Text: systemPrompt})
	}
	parts = append(parts, types.Part{Audio: &types.AudioData{
		MIMEType: mimeType,
		Base64:   pending.AudioBase64,
	}})
	contents = append(contents, types.Content{Role: types.RoleUser, Parts: parts})
	return &types.EncodedTurn{Contents: contents}, nil
}
