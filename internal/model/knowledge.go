// Package model defines data structures for the support platform.
package model

import (
	"time"
)

// Category groups knowledge entries and carries widget display hints.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// KnowledgeEntry is one question/answer record of the knowledge base.
type KnowledgeEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeDocument is the persisted shape of the whole knowledge base.
type KnowledgeDocument struct {
	Categories []Category       `json:"categories"`
	Entries    []KnowledgeEntry `json:"entries"`
}

// KnowledgeStats summarizes the knowledge base for the dashboard.
type KnowledgeStats struct {
	Categories int `json:"categories"`
	Entries    int `json:"entries"`
	Keywords   int `json:"keywords"`
}

// CreateEntryRequest is the request to add a knowledge entry.
type CreateEntryRequest struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// UpdateEntryRequest is the request to edit a knowledge entry. The
// keyword list, when present, fully replaces the stored one.
type UpdateEntryRequest struct {
	Question *string   `json:"question,omitempty"`
	Answer   *string   `json:"answer,omitempty"`
	Category *string   `json:"category,omitempty"`
	Keywords *[]string `json:"keywords,omitempty"`
}
