package chat

import (
	"regexp"
	"strings"
)

// greetingPattern matches greeting tokens as whole words, case-insensitively.
var greetingPattern = regexp.MustCompile(`(?i)\b(hi|hello|hey|howdy|good\s?(morning|afternoon|evening))\b`)

// IsGreeting reports whether the text is a greeting-type utterance.
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(strings.TrimSpace(text))
}

// cancelPhrases end an in-progress booking when found anywhere in the
// normalized question. Deliberately substring matches, including bare "no"
// and "back": the false positives are an accepted trade-off, and both ASCII
// and typographic apostrophes appear in real widget traffic.
var cancelPhrases = []string{
	"start over",
	"booking cancelled",
	"cancel",
	"i am not booking now",
	"no",
	"never mind",
	"forget it",
	"stop",
	"don't want",
	"not now",
	"exit",
	"nope",
	"quit",
	"back",
	"don’t want",
	"book later",
	"maybe another time",
	"some other time",
	"not booking",
	"not booking now",
	"not booking anymore",
	"don’t want to book",
	"i don't want to book anymore",
	"i’m not booking",
	"will book later",
}

// ContainsCancellation reports whether the text contains any booking
// cancellation phrase.
func ContainsCancellation(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range cancelPhrases {
		if strings.Contains(norm, phrase) {
			return true
		}
	}
	return false
}

// continuationKeywords are the terms that keep a booking conversation going;
// anything else while a booking is in progress triggers the interruption
// prompt.
var continuationKeywords = []string{
	"book", "booking", "appointment", "meeting", "schedule", "continue", "confirm", "cancel",
}

// MentionsBooking reports whether the text contains any booking-continuation
// keyword.
func MentionsBooking(text string) bool {
	norm := strings.ToLower(text)
	for _, kw := range continuationKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}
