package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, Status("unknown").Known())
}

func TestStatusNext(t *testing.T) {
	assert.Equal(t, []Status{StatusConfirmed, StatusCancelled}, StatusPending.Next())
	assert.Equal(t, []Status{StatusCompleted}, StatusInProgress.Next())
	assert.Empty(t, StatusCompleted.Next())

	next := StatusPending.Next()
	next[0] = StatusCompleted
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
}
