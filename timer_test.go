package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tilinna/clock"
)

func TestTimer(t *testing.T) {
	t.Parallel()
	clck := clock.NewMock(time.Unix(100, 0))
	ctx := clock.Context(context.Background(), clck)

	timer := NewTimer(ctx)
	clck.Add(1500 * time.Millisecond)
	assert.EqualValues(t, 1500, timer.Stop())
	assert.EqualValues(t, 1500, timer.Ms())

	timer.Restart()
	assert.EqualValues(t, 0, timer.Ms())
	clck.Add(25 * time.Millisecond)
	assert.EqualValues(t, 25, timer.Stop())
}
