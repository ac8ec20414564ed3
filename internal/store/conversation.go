package store

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/pkg/logger"
	"github.com/clawd-labs/support-platform/pkg/metrics"
)

// ConversationLog is the append-only record of exchanges. Every append
// rewrites the whole log so a restart always reads a complete snapshot.
type ConversationLog struct {
	path   string
	logger *logger.Logger

	mu      sync.RWMutex
	records []model.ConversationRecord
}

// NewConversationLog creates a conversation log backed by the given file.
func NewConversationLog(path string, log *logger.Logger) *ConversationLog {
	return &ConversationLog{
		path:   path,
		logger: log,
	}
}

// Load reads the backing file once at startup. A missing or corrupt
// file starts an empty log rather than failing startup.
func (l *ConversationLog) Load() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var records []model.ConversationRecord
	if err := loadDocument(l.path, &records); err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("conversation log unreadable, starting empty", zap.Error(err))
		}
		l.records = nil
		return
	}
	l.records = records
	l.logger.Info("conversation log loaded", zap.Int("records", len(l.records)))
}

// Append adds a record and persists the entire log. On a persistence
// failure the record stays in memory, so the log remains a faithful
// account of what the user was shown, and the error is returned for
// the caller to act on.
func (l *ConversationLog) Append(record model.ConversationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
	if err := saveDocument(l.path, l.records); err != nil {
		metrics.StorageWriteFailures.WithLabelValues("conversations").Inc()
		return apperr.Storage(err, "failed to persist conversation log")
	}
	return nil
}

// Recent returns at most the last n records, oldest first.
func (l *ConversationLog) Recent(n int) []model.ConversationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	start := len(l.records) - n
	return append([]model.ConversationRecord{}, l.records[start:]...)
}

// Len returns the number of logged records.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
