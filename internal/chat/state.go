package chat

// BookingState is the caller-owned state of an in-progress booking. It is
// passed in with each chat request and echoed back when the pipeline
// mutates it; the backend never persists it.
type BookingState struct {
	InProgress bool    `json:"inProgress"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
}

// Reset clears all booking fields atomically. After Reset the date and time
// must not be interpreted.
func (b *BookingState) Reset() {
	b.InProgress = false
	b.Date = nil
	b.Time = nil
}

// Turn is one (user utterance, bot reply) pair of the conversation.
type Turn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// historyWindow is the number of most recent turns fed to the fallback prompt.
const historyWindow = 5

// recentTurns caps history to the fallback context window.
func recentTurns(history []Turn) []Turn {
	if len(history) > historyWindow {
		return history[len(history)-historyWindow:]
	}
	return history
}
