package model

import (
	"time"
)

// MessageType identifies who produced a conversation message.
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

// ConversationMessage is a single turn half inside a conversation.
type ConversationMessage struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConversationRecord is one logged exchange. Records are append-only:
// their message sequence only grows.
type ConversationRecord struct {
	ID        string                `json:"id"`
	Platform  string                `json:"platform"`
	Customer  string                `json:"customer"`
	Messages  []ConversationMessage `json:"messages"`
	Timestamp time.Time             `json:"timestamp"`
}

// ChatRequest is the inbound chat message.
type ChatRequest struct {
	Message  string `json:"message"`
	Platform string `json:"platform,omitempty"`
	Customer string `json:"customer,omitempty"`
}

// ChatResponse is returned for an answered chat message.
type ChatResponse struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}
