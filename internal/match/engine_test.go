package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawd-labs/support-platform/internal/model"
)

type staticSource struct {
	entries []model.KnowledgeEntry
}

func (s *staticSource) Entries() []model.KnowledgeEntry {
	return s.entries
}

func pricingEntry() model.KnowledgeEntry {
	return model.KnowledgeEntry{
		ID:       "e1",
		Question: "What are your pricing plans?",
		Answer:   "We offer three plans.",
		Category: "pricing",
		Keywords: []string{"pricing", "plans", "cost"},
	}
}

func TestFindBestAnswerKeywordMatch(t *testing.T) {
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{pricingEntry()}})

	entry, score := engine.FindBestAnswer("what is your pricing")
	require.NotNil(t, entry)
	assert.Equal(t, "e1", entry.ID)
	// "pricing" is the only keyword hit: 2 * len("pricing") = 14
	assert.Equal(t, 14, score)
}

func TestFindBestAnswerNoMatch(t *testing.T) {
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{pricingEntry()}})

	entry, score := engine.FindBestAnswer("asdkjasd")
	assert.Nil(t, entry)
	assert.Zero(t, score)
}

func TestFindBestAnswerQuestionBonus(t *testing.T) {
	entry := pricingEntry()
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{entry}})

	withQuestion, scoreFull := engine.FindBestAnswer("hi, what are your pricing plans? thanks")
	require.NotNil(t, withQuestion)
	// keywords "pricing" (14) + "plans" (10) + full question text
	assert.Equal(t, 14+10+len(entry.Question), scoreFull)
}

func TestFindBestAnswerPrefersHigherScore(t *testing.T) {
	low := model.KnowledgeEntry{ID: "low", Question: "q1", Keywords: []string{"ship"}}
	high := model.KnowledgeEntry{ID: "high", Question: "q2", Keywords: []string{"shipping", "delivery"}}
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{low, high}})

	entry, _ := engine.FindBestAnswer("how long does shipping and delivery take")
	require.NotNil(t, entry)
	assert.Equal(t, "high", entry.ID)
}

func TestFindBestAnswerTieKeepsFirstEntry(t *testing.T) {
	first := model.KnowledgeEntry{ID: "first", Question: "qa", Keywords: []string{"refund"}}
	second := model.KnowledgeEntry{ID: "second", Question: "qb", Keywords: []string{"refund"}}
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{first, second}})

	entry, _ := engine.FindBestAnswer("i want a refund")
	require.NotNil(t, entry)
	assert.Equal(t, "first", entry.ID)
}

func TestFindBestAnswerDeterministic(t *testing.T) {
	engine := NewEngine(&staticSource{entries: []model.KnowledgeEntry{pricingEntry()}})

	for i := 0; i < 10; i++ {
		entry, score := engine.FindBestAnswer("tell me about cost and plans")
		require.NotNil(t, entry)
		assert.Equal(t, 2*len("cost")+2*len("plans"), score)
	}
}

func TestCategoryFallback(t *testing.T) {
	resp, ok := CategoryFallback("how much does it cost to upgrade")
	require.True(t, ok)
	assert.NotEmpty(t, resp)

	_, ok = CategoryFallback("xyzzy blorp")
	assert.False(t, ok)
}

func TestGenericResponseFromPool(t *testing.T) {
	pool := GenericPool()
	require.NotEmpty(t, pool)

	for i := 0; i < 20; i++ {
		assert.Contains(t, pool, GenericResponse())
	}
}
