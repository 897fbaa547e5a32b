package extractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogPage = `
<!DOCTYPE html>
<html>
<head>
	<title>  Trail Running Shoes Reviewed  </title>
	<meta name="description" content=" Our pick of the year's best trail running shoes. ">
</head>
<body>
	<h1>The <em>Best</em> Trail Shoes</h1>
	<h1>
		Second heading
	</h1>
	<p>Content.</p>
</body>
</html>
`

func TestExtractMetadata(t *testing.T) {
	md, err := New().ExtractMetadata([]byte(blogPage))
	require.NoError(t, err)

	assert.Equal(t, "Trail Running Shoes Reviewed", md.Title)
	assert.Equal(t, "The Best Trail Shoes", md.H1)
	assert.Equal(t, "Our pick of the year's best trail running shoes.", md.MetaDescription)
}

func TestExtractMetadataMissingTags(t *testing.T) {
	md, err := New().ExtractMetadata([]byte(`<html><body><p>nothing</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, md)
}

func TestExtractMetadataDescriptionWithoutContent(t *testing.T) {
	_, err := New().ExtractMetadata([]byte(`<html><head><meta name="description"></head></html>`))
	assert.True(t, errors.Is(err, ErrDescriptionContent))
}

func TestSummarize(t *testing.T) {
	summary, err := New().Summarize([]byte(blogPage))
	require.NoError(t, err)

	assert.Equal(t, "Trail Running Shoes Reviewed", summary.Title)
	assert.Equal(t, "Our pick of the year's best trail running shoes.", summary.Description)
	assert.Equal(t, []string{"TheBestTrail Shoes", "Second heading"}, summary.H1)
	assert.NotEqual(t, NoKeyword, summary.PrimaryKeyword)
	assert.True(t, strings.Contains(summary.PrimaryKeyword, "trail running shoes"))
}

func TestSummarizePlaceholders(t *testing.T) {
	summary, err := New().Summarize([]byte(`<html><head><meta name="description" content=""></head><body></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, NoTitle, summary.Title)
	assert.Equal(t, NoDescription, summary.Description)
	assert.Equal(t, []string{NoH1}, summary.H1)
	// "No Title No Description" still yields a phrase
	assert.Equal(t, "title", summary.PrimaryKeyword)
}

func TestWordCount(t *testing.T) {
	page := `<html><body><article><p>` +
		strings.Repeat("Trail running builds endurance and strength on varied terrain. ", 20) +
		`</p></article></body></html>`
	assert.Greater(t, New().WordCount([]byte(page)), 0)
	assert.Equal(t, 0, New().WordCount([]byte(``)))
}
