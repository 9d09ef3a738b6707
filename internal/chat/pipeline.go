package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/247convo/convo-backend/internal/knowledge"
	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

// SimilarityThreshold is the minimum cosine similarity for a knowledge-base
// row to answer the question directly.
const SimilarityThreshold = 0.60

// apologyFallback is returned when the final completion call fails.
const apologyFallback = "Sorry, there was a problem understanding your last message."

// Stage names, in pipeline order. Each inbound question resolves in exactly
// one of them.
const (
	StageInterrupt = "interrupt"
	StageKnowledge = "knowledge"
	StageGreeting  = "greeting"
	StageFallback  = "fallback"
)

// AnswerRequest is one inbound question plus its caller-supplied context.
type AnswerRequest struct {
	ClientID string
	Question string
	Config   tenants.Config
	History  []Turn
	Booking  *BookingState
}

// AnswerResult carries the answer, the stage that produced it, and the
// booking state when the cancellation stage mutated it.
type AnswerResult struct {
	Answer       string
	Stage        string
	Booking      *BookingState
	BookingReset bool
}

// Pipeline turns one question into one answer. Stages run in strict order:
// cancellation, booking interruption, knowledge base, greeting, history-aware
// fallback. At most one completion call is made per invocation.
type Pipeline struct {
	repo     knowledge.Repository
	embedder Embedder
	llm      LLMClient
	model    string
	logger   *logging.Logger
}

// NewPipeline creates the answer pipeline.
func NewPipeline(repo knowledge.Repository, embedder Embedder, llm LLMClient, model string, logger *logging.Logger) *Pipeline {
	if repo == nil {
		panic("chat: knowledge repository required")
	}
	if embedder == nil || llm == nil {
		panic("chat: embedder and llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		repo:     repo,
		embedder: embedder,
		llm:      llm,
		model:    model,
		logger:   logger,
	}
}

// Answer runs the staged pipeline for one question.
func (p *Pipeline) Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	question := strings.TrimSpace(req.Question)
	result := AnswerResult{Booking: req.Booking}

	// Cancellation runs before anything else; the mutation is echoed to the
	// caller even when a later stage produces the answer.
	if req.Booking != nil && ContainsCancellation(question) {
		req.Booking.Reset()
		result.BookingReset = true
	}

	// A booking in progress interrupts off-topic questions without touching
	// the model or the knowledge store.
	if req.Booking != nil && req.Booking.InProgress && !MentionsBooking(question) {
		result.Answer = interruptionPrompt(req.Booking)
		result.Stage = StageInterrupt
		return result, nil
	}

	queryVec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("chat: embed question: %w", err)
	}
	rows, err := p.repo.ListRows(ctx, req.ClientID)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("chat: load knowledge: %w", err)
	}

	match := knowledge.BestMatch(queryVec, rows)
	if match.Score >= SimilarityThreshold {
		answer, err := p.complete(ctx, []ChatMessage{{
			Role:    ChatRoleUser,
			Content: knowledgePrompt(req.Config.DisplayName(), match.Content, question),
		}})
		if err != nil {
			return AnswerResult{}, fmt.Errorf("chat: knowledge completion: %w", err)
		}
		result.Answer = answer
		result.Stage = StageKnowledge
		return result, nil
	}

	if IsGreeting(question) {
		answer, err := p.complete(ctx, []ChatMessage{
			{Role: ChatRoleSystem, Content: fmt.Sprintf("You are %s.", req.Config.DisplayName())},
			{Role: ChatRoleUser, Content: question},
		})
		if err != nil {
			return AnswerResult{}, fmt.Errorf("chat: greeting completion: %w", err)
		}
		result.Answer = answer
		result.Stage = StageGreeting
		return result, nil
	}

	answer, err := p.complete(ctx, []ChatMessage{{
		Role:    ChatRoleUser,
		Content: fallbackPrompt(req.Booking, req.History, question),
	}})
	if err != nil {
		// The history-aware stage degrades to a fixed apology instead of
		// surfacing the provider failure.
		p.logger.Warn("fallback completion failed", "client_id", req.ClientID, "error", err)
		answer = apologyFallback
	}
	result.Answer = answer
	result.Stage = StageFallback
	return result, nil
}

func (p *Pipeline) complete(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, err := p.llm.Complete(ctx, LLMRequest{Model: p.model, Messages: messages})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// interruptionPrompt asks the user to continue or abandon the booking,
// embedding the tentative date/time when known. Rendered by the widget, hence
// the <br>.
func interruptionPrompt(b *BookingState) string {
	var sb strings.Builder
	sb.WriteString("🕒 You have a booking in progress")
	if b.Date != nil {
		sb.WriteString(" for " + *b.Date)
	}
	if b.Time != nil {
		sb.WriteString(" at " + *b.Time)
	}
	sb.WriteString(".<br>Would you like to continue your booking or start over? (Type 'continue' or 'start over')")
	return sb.String()
}

func knowledgePrompt(botName, context, question string) string {
	return fmt.Sprintf("You are %s. Answer using ONLY this knowledge:\n\n%s\n\nQ: %s\nA:", botName, context, question)
}

func fallbackPrompt(booking *BookingState, history []Turn, question string) string {
	var sb strings.Builder
	if booking != nil && booking.InProgress {
		date, timeOfDay := "unknown date", "unknown time"
		if booking.Date != nil {
			date = *booking.Date
		}
		if booking.Time != nil {
			timeOfDay = *booking.Time
		}
		fmt.Fprintf(&sb, "NOTE: The user is currently booking for %s at %s. Respond accordingly.\n", date, timeOfDay)
	}
	for _, turn := range recentTurns(history) {
		fmt.Fprintf(&sb, "User: %s\nBot: %s\n", turn.User, turn.Bot)
	}
	fmt.Fprintf(&sb, "User: %s\nBot:", question)
	return sb.String()
}
