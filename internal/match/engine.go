// Package match scores free-text messages against the knowledge base.
// It is a cheap substring heuristic, not semantic search: longer
// overlapping spans weigh more, and no external service is involved.
package match

import (
	"strings"

	"github.com/clawd-labs/support-platform/internal/model"
)

// EntrySource supplies the entries to score, in stable iteration order.
type EntrySource interface {
	Entries() []model.KnowledgeEntry
}

// Engine selects the best-matching knowledge entry for a message.
type Engine struct {
	source EntrySource
}

// NewEngine creates a match engine over the given entry source.
func NewEngine(source EntrySource) *Engine {
	return &Engine{source: source}
}

// Score computes the relevance of one entry for a lowered message:
// each keyword found as a substring contributes twice its length, and
// the question length is added once when the message contains the full
// question text.
func Score(entry model.KnowledgeEntry, loweredMessage string) int {
	score := 0
	for _, keyword := range entry.Keywords {
		if strings.Contains(loweredMessage, keyword) {
			score += len(keyword) * 2
		}
	}
	if strings.Contains(loweredMessage, strings.ToLower(entry.Question)) {
		score += len(entry.Question)
	}
	return score
}

// FindBestAnswer returns the entry with the strictly highest positive
// score, or nil when nothing scores above zero. Ties keep the earlier
// entry: later entries only replace on a strict improvement.
func (e *Engine) FindBestAnswer(message string) (*model.KnowledgeEntry, int) {
	lowered := strings.ToLower(message)

	var best *model.KnowledgeEntry
	bestScore := 0

	entries := e.source.Entries()
	for i := range entries {
		if score := Score(entries[i], lowered); score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}
	return best, bestScore
}
