package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/clawd-labs/support-platform/internal/model"
)

func defaultCategories() []model.Category {
	return []model.Category{
		{ID: "pricing", Name: "Pricing", Icon: "💰", Color: "#34c759"},
		{ID: "delivery", Name: "Delivery", Icon: "🚚", Color: "#007aff"},
		{ID: "returns", Name: "Returns", Icon: "↩️", Color: "#ff9500"},
		{ID: "products", Name: "Products", Icon: "📦", Color: "#5856d6"},
		{ID: "technical", Name: "Technical", Icon: "⚙️", Color: "#af52de"},
		{ID: "contact", Name: "Contact", Icon: "📞", Color: "#ff3b30"},
	}
}

func seedEntries() []model.KnowledgeEntry {
	now := time.Now()
	seed := []struct {
		question string
		answer   string
		category string
		keywords []string
	}{
		{
			question: "What are your pricing plans?",
			answer:   "We offer three plans: Starter ($9/month), Professional ($29/month), and Enterprise (custom pricing). Each plan includes different features and support levels.",
			category: "pricing",
			keywords: []string{"pricing", "plans", "cost", "subscription"},
		},
		{
			question: "How long does delivery take?",
			answer:   "Standard delivery takes 3-5 business days. Express delivery (1-2 days) is available for an additional fee. International shipping takes 7-14 business days.",
			category: "delivery",
			keywords: []string{"delivery", "shipping", "time", "days"},
		},
		{
			question: "What is your return policy?",
			answer:   "We offer a 30-day return policy for unused items in original packaging. Refunds are processed within 5-7 business days after we receive the returned item.",
			category: "returns",
			keywords: []string{"return", "refund", "policy", "money back"},
		},
		{
			question: "Do you offer product warranties?",
			answer:   "Yes! All products come with a 1-year manufacturer warranty. Extended warranties (2-3 years) are available for purchase at checkout.",
			category: "products",
			keywords: []string{"warranty", "guarantee", "product", "coverage"},
		},
		{
			question: "How can I reset my password?",
			answer:   "Go to the login page and click 'Forgot Password'. Enter your email address and we'll send you a reset link. The link expires in 24 hours.",
			category: "technical",
			keywords: []string{"password", "reset", "login", "forgot", "account"},
		},
	}

	entries := make([]model.KnowledgeEntry, len(seed))
	for i, s := range seed {
		entries[i] = model.KnowledgeEntry{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Question:  s.question,
			Answer:    s.answer,
			Category:  s.category,
			Keywords:  s.keywords,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return entries
}
