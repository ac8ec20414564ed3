package match

import (
	"math/rand"
	"strings"
)

// CategoryResponder is one fixed fallback category: a keyword list and
// a pool of canned responses.
type CategoryResponder struct {
	ID       string
	Keywords []string
	Pool     []string
}

// fallbackCategories are scanned in declaration order; the first
// keyword hit wins, without ranking.
var fallbackCategories = []CategoryResponder{
	{
		ID:       "pricing",
		Keywords: []string{"price", "pricing", "cost", "plan", "subscription", "how much"},
		Pool: []string{
			"Our plans start at $9/month for Starter, with Professional at $29/month and custom Enterprise pricing. Would you like details on a specific plan?",
			"We have flexible pricing for every team size. The Starter plan begins at $9/month - want me to walk you through the options?",
			"Great question about pricing! Plans range from $9/month to custom Enterprise agreements. What size team are you shopping for?",
		},
	},
	{
		ID:       "delivery",
		Keywords: []string{"delivery", "shipping", "ship", "arrive", "track"},
		Pool: []string{
			"Standard delivery takes 3-5 business days, express takes 1-2. You can track your order from your account page.",
			"Most orders arrive within 3-5 business days. Need express shipping? It's available at checkout for a small fee.",
			"Shipping usually takes 3-5 business days domestically and 7-14 internationally. Is there an order I can help you track?",
		},
	},
	{
		ID:       "returns",
		Keywords: []string{"return", "refund", "money back", "exchange"},
		Pool: []string{
			"We accept returns within 30 days for unused items in original packaging. Refunds land within 5-7 business days.",
			"No problem - you have 30 days to return unused items. Want me to explain how to start a return?",
			"Returns are easy: 30-day window, original packaging, refund in 5-7 business days after we receive the item.",
		},
	},
	{
		ID:       "products",
		Keywords: []string{"product", "warranty", "guarantee", "feature", "stock"},
		Pool: []string{
			"All products come with a 1-year manufacturer warranty, and extended coverage is available at checkout.",
			"Happy to help with product questions! Every item carries a 1-year warranty. Which product are you curious about?",
			"Our catalog items include a 1-year warranty as standard. Anything specific you'd like to know?",
		},
	},
	{
		ID:       "technical",
		Keywords: []string{"password", "login", "error", "bug", "reset", "account", "crash"},
		Pool: []string{
			"For login trouble, try the 'Forgot Password' link on the sign-in page - the reset link is valid for 24 hours.",
			"Sorry you're hitting a technical issue! A password reset from the login page fixes most access problems. Still stuck?",
			"Technical hiccups happen. Start with a password reset or clearing your browser cache, and let me know if the problem persists.",
		},
	},
	{
		ID:       "contact",
		Keywords: []string{"contact", "phone", "email", "human", "agent", "speak"},
		Pool: []string{
			"You can reach our team at support@clawd.com or through this chat - a human agent replies within a few hours.",
			"Of course! Email support@clawd.com or stay right here and I'll flag a human agent for you.",
			"Our support team is available via email at support@clawd.com. Would you like me to connect you with an agent?",
		},
	},
}

// genericPool is the final fallback when nothing matched at all.
var genericPool = []string{
	"That's a great question! Let me connect you with our support team.",
	"I understand. Could you provide more details?",
	"Thank you for asking! I'll help you find the answer.",
	"I'm here to help! Could you tell me more?",
	"Got it! Let me look into this for you.",
	"I appreciate your question. Here's what I can tell you...",
}

// CategoryFallback scans the fixed categories for the first keyword
// contained in the message and returns a random response from that
// category's pool. The second return reports whether anything hit.
func CategoryFallback(message string) (string, bool) {
	lowered := strings.ToLower(message)
	for _, cat := range fallbackCategories {
		for _, keyword := range cat.Keywords {
			if strings.Contains(lowered, keyword) {
				return cat.Pool[rand.Intn(len(cat.Pool))], true
			}
		}
	}
	return "", false
}

// GenericResponse returns a random generic acknowledgement.
func GenericResponse() string {
	return genericPool[rand.Intn(len(genericPool))]
}

// GenericPool returns the fixed generic responses. Exposed so callers
// and tests can check membership.
func GenericPool() []string {
	return append([]string{}, genericPool...)
}
