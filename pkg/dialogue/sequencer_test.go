package dialogue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer_RunsStepsInOrder(t *testing.T) {
	s := NewSequencer()
	var order []int

	steps := []Step{
		{Do: func() { order = append(order, 1) }},
		{Do: func() { order = append(order, 2) }},
		{Delay: time.Millisecond, Do: func() { order = append(order, 3) }},
		{}, // bare pause
		{Do: func() { order = append(order, 4) }},
	}

	require.NoError(t, s.Run(context.Background(), steps))
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestSequencer_CancelStopsSequence(t *testing.T) {
	s := NewSequencer()
	var ran []int

	ctx, cancel := context.WithCancel(context.Background())
	steps := []Step{
		{Do: func() { ran = append(ran, 1) }},
		{Do: func() { cancel() }},
		{Delay: time.Minute, Do: func() { ran = append(ran, 2) }},
	}

	err := s.Run(ctx, steps)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, ran)
}

func TestSequencer_DetachZeroDelayRunsInline(t *testing.T) {
	s := NewSequencer()
	ran := false
	s.Detach(0, func() { ran = true })
	assert.True(t, ran)
}

func TestSequencer_WaitReturnsContextError(t *testing.T) {
	s := NewSequencer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Wait(ctx, 0), context.Canceled)
	assert.ErrorIs(t, s.Wait(ctx, time.Minute), context.Canceled)
	assert.NoError(t, s.Wait(context.Background(), 0))
}
