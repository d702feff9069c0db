package core

import (
	"context"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

// ModelGateway is the transport to the generative-language endpoint. It
// sends one encoded turn and returns the model's raw text reply.
type ModelGateway interface {
	GenerateReply(ctx context.Context, turn *types.EncodedTurn) (string, error)
}

// Translator converts text between languages. Implementations report
// failure through the error; callers decide how to degrade.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
