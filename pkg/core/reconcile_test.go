package core

import (
	"context"
	"errors"
	"testing"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

type fakeTranslator struct {
	out   string
	err   error
	calls int
	last  string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.calls++
	f.last = text
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func TestResolveRecord_CanonicalWinsOverCamelCase(t *testing.T) {
	fields := types.FieldSet{
		"user_transcript": "canonical",
		"userTranscript":  "alias",
		"ai_response_en":  "EN canonical",
		"aiResponseEn":    "EN alias",
		"ai_response_jp":  "JP canonical",
		"aiResponseJp":    "JP alias",
	}
	rec := ResolveRecord(fields)
	if rec.UserTranscript != "canonical" {
		t.Fatalf("transcript=%q", rec.UserTranscript)
	}
	if rec.ReplyEN != "EN canonical" || rec.ReplyJP != "JP canonical" {
		t.Fatalf("record=%+v", rec)
	}
}

func TestResolveRecord_CamelCaseFallback(t *testing.T) {
	rec := ResolveRecord(types.FieldSet{
		"userTranscriptEn": "spoken",
		"aiResponseEn":     "Hello!",
	})
	if rec.UserTranscript != "spoken" || rec.ReplyEN != "Hello!" {
		t.Fatalf("record=%+v", rec)
	}
	if rec.ReplyJP != "" {
		t.Fatalf("absent field should resolve to empty string, got %q", rec.ReplyJP)
	}
}

func TestResolveRecord_TranscriptEnAliasBeatsBareTranscript(t *testing.T) {
	rec := ResolveRecord(types.FieldSet{
		"user_transcript_en": "en-tagged",
		"user_transcript":    "bare",
	})
	if rec.UserTranscript != "en-tagged" {
		t.Fatalf("transcript=%q", rec.UserTranscript)
	}
}

func TestReconcile_AppendsUserThenModelTurn(t *testing.T) {
	history := NewHistory(nil)
	fields := types.FieldSet{
		"user_transcript": "Hi",
		"ai_response_en":  "Hello!",
		"ai_response_jp":  "こんにちは！",
	}

	display := Reconcile(context.Background(), fields, types.PendingTurnInput{Text: "Hi"}, history, nil, nil)

	turns := history.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("history=%d turns, want 2", len(turns))
	}
	if turns[0].Role != types.RoleUser || turns[0].Content != "Hi" {
		t.Fatalf("user turn=%+v", turns[0])
	}
	if turns[1].Role != types.RoleModel {
		t.Fatalf("model turn=%+v", turns[1])
	}
	if got := types.ReplyTextFromContent(turns[1].Content); got != "Hello!" {
		t.Fatalf("stored record replays as %q", got)
	}
	if display.ReplyEN != "Hello!" || display.ReplyJP != "こんにちは！" {
		t.Fatalf("display=%+v", display)
	}
}

func TestReconcile_BackfillsTranscriptJP(t *testing.T) {
	history := NewHistory(nil)
	tr := &fakeTranslator{out: "こんにちは"}
	fields := types.FieldSet{
		"user_transcript": "Hello",
		"ai_response_en":  "Hi!",
		"ai_response_jp":  "やあ",
	}

	display := Reconcile(context.Background(), fields, types.PendingTurnInput{Text: "Hello"}, history, tr, nil)

	if tr.calls != 1 || tr.last != "Hello" {
		t.Fatalf("translator calls=%d last=%q", tr.calls, tr.last)
	}
	if display.UserTranscriptJP != "こんにちは" {
		t.Fatalf("transcript jp=%q", display.UserTranscriptJP)
	}
}

func TestReconcile_NoBackfillForSentinelTranscript(t *testing.T) {
	history := NewHistory(nil)
	tr := &fakeTranslator{out: "unused"}
	fields := types.FieldSet{
		"user_transcript": types.TranscriptSentinel,
		"ai_response_en":  "Hi!",
		"ai_response_jp":  "やあ",
	}

	display := Reconcile(context.Background(), fields, types.PendingTurnInput{AudioBase64: "Zm9v"}, history, tr, nil)

	if tr.calls != 0 {
		t.Fatalf("translator calls=%d, want 0", tr.calls)
	}
	if display.UserTranscriptJP != "" {
		t.Fatalf("transcript jp=%q, want empty", display.UserTranscriptJP)
	}
	// The sentinel still lands in the user turn; suppression is the
	// rendering layer's job.
	if turns := history.Snapshot(); turns[0].Content != types.TranscriptSentinel {
		t.Fatalf("user turn=%q", turns[0].Content)
	}
}

func TestReconcile_NoBackfillWhenJPAlreadyPresent(t *testing.T) {
	tr := &fakeTranslator{out: "unused"}
	fields := types.FieldSet{
		"user_transcript":    "Hello",
		"user_transcript_jp": "こんにちは",
		"ai_response_en":     "Hi!",
	}

	display := Reconcile(context.Background(), fields, types.PendingTurnInput{Text: "Hello"}, NewHistory(nil), tr, nil)

	if tr.calls != 0 {
		t.Fatalf("translator calls=%d, want 0", tr.calls)
	}
	if display.UserTranscriptJP != "こんにちは" {
		t.Fatalf("transcript jp=%q", display.UserTranscriptJP)
	}
}

func TestReconcile_BackfillFailureLeavesFieldEmpty(t *testing.T) {
	tr := &fakeTranslator{err: errors.New("boom")}
	fields := types.FieldSet{
		"user_transcript": "Hello",
		"ai_response_en":  "Hi!",
	}

	display := Reconcile(context.Background(), fields, types.PendingTurnInput{Text: "Hello"}, NewHistory(nil), tr, nil)

	if display.UserTranscriptJP != "" {
		t.Fatalf("transcript jp=%q, want empty on backfill failure", display.UserTranscriptJP)
	}
}

func TestReconcile_EmptyTranscriptFallsBackToSubmittedText(t *testing.T) {
	history := NewHistory(nil)
	fields := types.FieldSet{
		"ai_response_en": "Hi!",
		"ai_response_jp": "やあ",
	}

	Reconcile(context.Background(), fields, types.PendingTurnInput{Text: "Let's talk."}, history, nil, nil)

	if turns := history.Snapshot(); turns[0].Content != "Let's talk." {
		t.Fatalf("user turn=%q, want literal submitted text", turns[0].Content)
	}
}
