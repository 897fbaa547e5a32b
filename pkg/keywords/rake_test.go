package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	ranked := Rank("Running Shoes for Trail Runners | Buy running shoes online")
	require.NotEmpty(t, ranked)

	// "buy running shoes online" is the longest run and shares words with the
	// first phrase, so it collects the highest degree.
	assert.Equal(t, "buy running shoes online", ranked[0].Text)

	texts := make([]string, len(ranked))
	for i, p := range ranked {
		texts[i] = p.Text
	}
	assert.ElementsMatch(t, []string{"running shoes", "trail runners", "buy running shoes online"}, texts)
}

func TestRankScores(t *testing.T) {
	// phrases: [seo tips] [seo]
	// seo: freq 2, degree 2+1=3 -> 1.5; tips: freq 1, degree 2 -> 2
	ranked := Rank("SEO tips and SEO")
	require.Len(t, ranked, 2)
	assert.Equal(t, Phrase{Text: "seo tips", Score: 3.5}, ranked[0])
	assert.Equal(t, Phrase{Text: "seo", Score: 1.5}, ranked[1])
}

func TestRankTieBreak(t *testing.T) {
	ranked := Rank("apple, zebra")
	require.Len(t, ranked, 2)
	assert.Equal(t, "zebra", ranked[0].Text)
	assert.Equal(t, "apple", ranked[1].Text)
}

func TestTop(t *testing.T) {
	kw, ok := Top("The Ultimate Content Marketing Playbook")
	assert.True(t, ok)
	assert.Equal(t, "ultimate content marketing playbook", kw)

	_, ok = Top("the and of , !")
	assert.False(t, ok)

	_, ok = Top("")
	assert.False(t, ok)
}

func TestRankKeepsPunctuationRuns(t *testing.T) {
	kw, ok := Top("Trail Shoes – Reviews")
	require.True(t, ok)
	assert.Equal(t, "trail shoes – reviews", kw)

	kw, ok = Top("Wait...")
	require.True(t, ok)
	assert.Equal(t, "wait ...", kw)

	kw, ok = Top("Shoes | Store")
	require.True(t, ok)
	assert.Equal(t, "store", kw)
}
