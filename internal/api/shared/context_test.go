package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, TraceIDLength*2)
	assert.Regexp(t, "^[0-9a-f]+$", id)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, id, other)
}
