package helpers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type requestIDKeyType string

const requestIDKey requestIDKeyType = "request_id"

// ContextWithRequestID tags ctx so that every model query made with it logs
// the same request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(requestIDKey).(string)
	if ok {
		return v
	}

	log.Ctx(ctx).Trace().Msg("request ID not found in context")

	// "gen_" marks ids that were not set by the caller
	return "gen_" + uuid.NewString()
}
