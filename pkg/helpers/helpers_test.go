package helpers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPtr(t *testing.T) {
	v := 42
	p := ToPtr(v)
	v = 0
	assert.Equal(t, 42, *p)
}

func TestRequestIDFromContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))

	generated := RequestIDFromContext(context.Background())
	assert.True(t, strings.HasPrefix(generated, "gen_"))
	assert.NotEqual(t, generated, RequestIDFromContext(context.Background()))
}
