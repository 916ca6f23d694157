package frame

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	ctx := NewContext(nil)
	ctx.Advance(0.25)
	ctx.Advance(0.5)
	assert.Equal(t, float32(0.5), ctx.DT)
	assert.InDelta(t, 0.75, ctx.Time, 1e-9)
	assert.Equal(t, uint64(2), ctx.Frame)
	assert.False(t, ctx.KeyDown(input.KeyW))

	in := input.NewState()
	in.SetKey(input.KeyW, true)
	ctx.Input = in
	assert.True(t, ctx.KeyDown(input.KeyW))
}
