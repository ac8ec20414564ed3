package store

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/pkg/logger"
	"github.com/clawd-labs/support-platform/pkg/metrics"
)

// KnowledgeStore owns the categories and Q&A entries. Entries keep
// insertion order; every mutation rewrites the whole document.
type KnowledgeStore struct {
	path   string
	logger *logger.Logger

	mu         sync.RWMutex
	categories []model.Category
	entries    []model.KnowledgeEntry
}

// NewKnowledgeStore creates a knowledge store backed by the given file.
func NewKnowledgeStore(path string, log *logger.Logger) *KnowledgeStore {
	return &KnowledgeStore{
		path:   path,
		logger: log,
	}
}

// Load reads the backing document. A missing or corrupt file starts an
// empty store, which is then seeded with the default categories and
// sample entries.
func (s *KnowledgeStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc model.KnowledgeDocument
	if err := loadDocument(s.path, &doc); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("knowledge base unreadable, starting empty", zap.Error(err))
		}
	} else {
		s.categories = doc.Categories
		s.entries = doc.Entries
	}

	if len(s.categories) == 0 && len(s.entries) == 0 {
		s.categories = defaultCategories()
		s.entries = seedEntries()
		if err := s.persistLocked(); err != nil {
			s.logger.Warn("failed to persist seeded knowledge base", zap.Error(err))
		}
	}

	metrics.KnowledgeEntries.Set(float64(len(s.entries)))
	s.logger.Info("knowledge base loaded",
		zap.Int("categories", len(s.categories)),
		zap.Int("entries", len(s.entries)),
	)
}

// Create adds a new entry. Question, answer and a known category are
// required; keywords are lowercased with duplicates suppressed.
func (s *KnowledgeStore) Create(req *model.CreateEntryRequest) (*model.KnowledgeEntry, error) {
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return nil, apperr.Validation("question and answer are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categoryExistsLocked(req.Category) {
		return nil, apperr.Validation("unknown category", goerr.V("category", req.Category))
	}

	now := time.Now()
	entry := model.KnowledgeEntry{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Question:  question,
		Answer:    answer,
		Category:  req.Category,
		Keywords:  normalizeKeywords(req.Keywords),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.entries = append(s.entries, entry)
	if err := s.persistLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return nil, err
	}

	metrics.KnowledgeEntries.Set(float64(len(s.entries)))
	return &entry, nil
}

// Update edits an entry in place and refreshes its updated timestamp.
// A provided keyword list fully replaces the stored one.
func (s *KnowledgeStore) Update(id string, req *model.UpdateEntryRequest) (*model.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, apperr.NotFound("entry not found", goerr.V("id", id))
	}

	prev := s.entries[idx]
	entry := prev

	if req.Question != nil {
		q := strings.TrimSpace(*req.Question)
		if q == "" {
			return nil, apperr.Validation("question cannot be empty")
		}
		entry.Question = q
	}
	if req.Answer != nil {
		a := strings.TrimSpace(*req.Answer)
		if a == "" {
			return nil, apperr.Validation("answer cannot be empty")
		}
		entry.Answer = a
	}
	if req.Category != nil {
		if !s.categoryExistsLocked(*req.Category) {
			return nil, apperr.Validation("unknown category", goerr.V("category", *req.Category))
		}
		entry.Category = *req.Category
	}
	if req.Keywords != nil {
		entry.Keywords = normalizeKeywords(*req.Keywords)
	}
	entry.UpdatedAt = time.Now()

	s.entries[idx] = entry
	if err := s.persistLocked(); err != nil {
		s.entries[idx] = prev
		return nil, err
	}

	return &entry, nil
}

// Delete removes an entry. Deleting an unknown id is an error, so
// repeated deletes on the same id fail.
func (s *KnowledgeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return apperr.NotFound("entry not found", goerr.V("id", id))
	}

	prev := s.entries
	s.entries = append(append([]model.KnowledgeEntry{}, s.entries[:idx]...), s.entries[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return err
	}

	metrics.KnowledgeEntries.Set(float64(len(s.entries)))
	return nil
}

// Search returns entries whose question, answer or any keyword
// contains the query, case-insensitively, in insertion order.
func (s *KnowledgeStore) Search(query string) []model.KnowledgeEntry {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []model.KnowledgeEntry
	for _, entry := range s.entries {
		if entryMatches(entry, q) {
			results = append(results, entry)
		}
	}
	return results
}

func entryMatches(entry model.KnowledgeEntry, q string) bool {
	if strings.Contains(strings.ToLower(entry.Question), q) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Answer), q) {
		return true
	}
	for _, k := range entry.Keywords {
		if strings.Contains(k, q) {
			return true
		}
	}
	return false
}

// ListByCategory returns entries of one category, or all entries for
// the "all" pseudo-category.
func (s *KnowledgeStore) ListByCategory(categoryID string) []model.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if categoryID == "" || categoryID == "all" {
		return append([]model.KnowledgeEntry{}, s.entries...)
	}

	var results []model.KnowledgeEntry
	for _, entry := range s.entries {
		if entry.Category == categoryID {
			results = append(results, entry)
		}
	}
	return results
}

// Entries returns a snapshot of all entries in insertion order.
func (s *KnowledgeStore) Entries() []model.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.KnowledgeEntry{}, s.entries...)
}

// Categories returns a snapshot of all categories.
func (s *KnowledgeStore) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category{}, s.categories...)
}

// CreateCategory adds a category. IDs must be unique.
func (s *KnowledgeStore) CreateCategory(cat model.Category) error {
	if strings.TrimSpace(cat.ID) == "" || strings.TrimSpace(cat.Name) == "" {
		return apperr.Validation("category id and name are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryExistsLocked(cat.ID) {
		return apperr.Validation("category already exists", goerr.V("category", cat.ID))
	}

	s.categories = append(s.categories, cat)
	if err := s.persistLocked(); err != nil {
		s.categories = s.categories[:len(s.categories)-1]
		return err
	}
	return nil
}

// DeleteCategory removes a category. Deletion is refused while any
// entry still references it.
func (s *KnowledgeStore) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cat := range s.categories {
		if cat.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFound("category not found", goerr.V("category", id))
	}

	for _, entry := range s.entries {
		if entry.Category == id {
			return apperr.Validation("category is still referenced by entries", goerr.V("category", id))
		}
	}

	prev := s.categories
	s.categories = append(append([]model.Category{}, s.categories[:idx]...), s.categories[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		s.categories = prev
		return err
	}
	return nil
}

// Stats summarizes the store for the dashboard.
func (s *KnowledgeStore) Stats() model.KnowledgeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keywords := 0
	for _, entry := range s.entries {
		keywords += len(entry.Keywords)
	}
	return model.KnowledgeStats{
		Categories: len(s.categories),
		Entries:    len(s.entries),
		Keywords:   keywords,
	}
}

func (s *KnowledgeStore) persistLocked() error {
	doc := model.KnowledgeDocument{
		Categories: s.categories,
		Entries:    s.entries,
	}
	if err := saveDocument(s.path, &doc); err != nil {
		metrics.StorageWriteFailures.WithLabelValues("knowledge").Inc()
		return apperr.Storage(err, "failed to persist knowledge base")
	}
	return nil
}

func (s *KnowledgeStore) categoryExistsLocked(id string) bool {
	for _, cat := range s.categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func (s *KnowledgeStore) indexLocked(id string) int {
	for i, entry := range s.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	var out []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
