package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusAssigned, StatusInProgress, true},
		{StatusInProgress, StatusPending, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusExpired, true},

		{StatusAssigned, StatusPending, false},
		{StatusAssigned, StatusApproved, false},
		{StatusInProgress, StatusApproved, false},
		{StatusInProgress, StatusRejected, false},
		{StatusPending, StatusInProgress, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusPending, false},
		{StatusExpired, StatusApproved, false},
		{StatusExpired, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestSubmissionIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name     string
		status   Status
		expires  *time.Time
		expected bool
	}{
		{"pending past window", StatusPending, &past, true},
		{"pending within window", StatusPending, &future, false},
		{"pending without deadline", StatusPending, nil, false},
		{"approved never expires", StatusApproved, &past, false},
		{"rejected never expires", StatusRejected, &past, false},
		{"in-progress never expires", StatusInProgress, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Submission{Status: tt.status, ExpiresAt: tt.expires}
			assert.Equal(t, tt.expected, s.IsExpired(now))
		})
	}
}
