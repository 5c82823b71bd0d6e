package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusApproved, StatusInProgress, true},
		{StatusApproved, StatusPending, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},

		// Terminal statuses accept nothing.
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},

		// Self-moves and unknown values are rejected.
		{StatusPending, StatusPending, false},
		{StatusPending, "teleported", false},
		{"teleported", StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, TerminalStatus(StatusCompleted))
	assert.True(t, TerminalStatus(StatusCancelled))
	assert.False(t, TerminalStatus(StatusPending))
	assert.False(t, TerminalStatus(StatusApproved))
	assert.False(t, TerminalStatus(StatusInProgress))
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.True(t, KnownStatus(s))
	}
	assert.False(t, KnownStatus(""))
	assert.False(t, KnownStatus("archived"))
}
