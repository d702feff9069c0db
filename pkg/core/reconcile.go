package core

import (
	"context"
	"log/slog"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

// Ordered candidate keys per canonical field. Canonical snake_case names
// win; camelCase aliases from older reply shapes are checked next; absent
// fields resolve to the empty string, never to a missing key.
var (
	transcriptAliases   = []string{"user_transcript_en", "userTranscriptEn", "user_transcript", "userTranscript"}
	transcriptJPAliases = []string{"user_transcript_jp", "userTranscriptJp"}
	replyENAliases      = []string{"ai_response_en", "aiResponseEn"}
	replyJPAliases      = []string{"ai_response_jp", "aiResponseJp"}
)

// resolveField returns the first present key's value from the ordered
// candidate list.
func resolveField(fields types.FieldSet, candidates []string) string {
	for _, key := range candidates {
		if v, ok := fields[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// ResolveRecord collapses reply field-name variants into the canonical
// record. Pure; alias precedence is the only logic here.
func ResolveRecord(fields types.FieldSet) types.ConversationRecord {
	return types.ConversationRecord{
		UserTranscript: resolveField(fields, transcriptAliases),
		ReplyEN:        resolveField(fields, replyENAliases),
		ReplyJP:        resolveField(fields, replyJPAliases),
	}
}

// Reconcile normalizes a decoded reply, backfills the Japanese rendering
// of the user transcript when one is missing, and appends the exchange to
// history: one user turn (resolved transcript, or the literal submitted
// text) followed by one model turn (the serialized record).
//
// The backfill translation is best-effort: on failure the field stays
// empty and the exchange still completes.
func Reconcile(ctx context.Context, fields types.FieldSet, pending types.PendingTurnInput, history *History, translator Translator, logger *slog.Logger) types.DisplayTurn {
	record := ResolveRecord(fields)
	transcriptJP := resolveField(fields, transcriptJPAliases)

	if transcriptJP == "" && record.UserTranscript != "" && !types.IsTranscriptSentinel(record.UserTranscript) {
		if translator != nil {
			translated, err := translator.Translate(ctx, record.UserTranscript, types.LangEnglish, types.LangJapanese)
			if err != nil {
				if logger != nil {
					logger.Warn("transcript backfill translation failed", "error", err)
				}
			} else {
				transcriptJP = translated
			}
		}
	}

	userContent := record.UserTranscript
	if userContent == "" {
		userContent = pending.Text
	}
	history.AppendUser(userContent)
	history.AppendModel(record.Serialize())

	return types.DisplayTurn{
		UserTranscript:   record.UserTranscript,
		UserTranscriptJP: transcriptJP,
		ReplyEN:          record.ReplyEN,
		ReplyJP:          record.ReplyJP,
	}
}
