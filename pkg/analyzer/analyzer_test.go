package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seoscout/internal/models"
)

func TestIsCTA(t *testing.T) {
	a := New()

	tests := []struct {
		text string
		want bool
	}{
		{"Sign up today", true},
		{"SIGN UP", true},
		{"backup", false},
		{"Backup settings", false},
		{"Shopping cart", false},
		{"Shop now", true},
		{"Explore our plans", true},
		{"Reorder", false},
		{"Add to cart", true},
		{"ébuy", false},
		{"buyé now", false},
		{"Buy café gifts", true},
		{"Ordena ya", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, a.IsCTA(tt.text))
		})
	}
}

func TestAnalyzePlacement(t *testing.T) {
	page := `<html><body>
<header><a href="/join">Join us</a></header>
<nav>Shop</nav>
<main>
<button>Subscribe</button>
<a href="/b">Backup settings</a>
<span>Learn more about us</span>
</main>
<footer>Subscribe</footer>
</body></html>`

	record, err := New().Analyze("https://example.com/blog", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/blog", record.URL)
	assert.Equal(t, models.StatusOK, record.Status)
	assert.Equal(t, []models.CTA{
		{Text: "Subscribe", Element: models.ElementButton},
		{Text: "Join us", Element: models.ElementLink},
		{Text: "Learn more about us", Element: models.ElementSpan},
	}, record.Common)
	assert.Equal(t, []string{"Join us"}, models.Texts(record.Header))
	assert.Equal(t, []string{"Subscribe"}, models.Texts(record.Footer))
	assert.Equal(t, 3, record.Total)
}

func TestAnalyzeBodyCountsHeaderAndFooterAgain(t *testing.T) {
	page := `<html><body><header>Subscribe</header><footer><a href="/x">Order now</a></footer></body></html>`

	record, err := New().Analyze("u", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"Order now"}, models.Texts(record.Footer))
	assert.Equal(t, record.Common, record.Body)
	assert.Contains(t, models.Texts(record.Body), "Order now")
}

func TestAnalyzeElementPrecedence(t *testing.T) {
	page := `<html><body>` +
		`<button>Buy now</button>` +
		`<a href="#">Buy now</a>` +
		`<div><span>Order today</span></div>` +
		`</body></html>`

	record, err := New().Analyze("u", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []models.CTA{
		{Text: "Buy now", Element: models.ElementLink},
		{Text: "Order today", Element: models.ElementDiv},
	}, record.Common)
}

func TestAnalyzeHeaderNeedsSoleString(t *testing.T) {
	// whitespace siblings around the link mean the header has no sole string
	page := "<html><body><header>\n<a href=\"/s\">Sign up</a>\n</header></body></html>"

	record, err := New().Analyze("u", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"Sign up"}, models.Texts(record.Common))
	assert.Empty(t, record.Header)
}

func TestAnalyzeQuotesCTAText(t *testing.T) {
	page := `<html><body><nav><button>Buy (now</button></nav></body></html>`

	record, err := New().Analyze("u", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"Buy (now"}, models.Texts(record.Common))
	assert.Equal(t, []string{"Buy (now"}, models.Texts(record.Header))
}

func TestWholeWord(t *testing.T) {
	p := wholeWord("Buy now!")
	assert.True(t, p.MatchString("please buy now!x"))
	assert.False(t, p.MatchString("Buy now!"))
	assert.False(t, p.MatchString("Buy now! "))

	p = wholeWord("Sign up")
	assert.True(t, p.MatchString("Sign up"))
	assert.True(t, p.MatchString("(sign up)"))
	assert.False(t, p.MatchString("ésign up"))
}

func TestAnalyzeIgnoresScriptAndStyle(t *testing.T) {
	page := `<html><body>` +
		`<div><p>Welcome</p><script>window.subscribe = 1;</script></div>` +
		`<span><style>.join { color: red }</style></span>` +
		`<button>Sign up<script>track("buy")</script></button>` +
		`<div><template><a href="/x">Order</a></template></div>` +
		`</body></html>`

	record, err := New().Analyze("u", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []models.CTA{{Text: "Sign up", Element: models.ElementButton}}, record.Common)
	assert.Equal(t, 1, record.Total)
}

func TestAnalyzeNoCTAs(t *testing.T) {
	record, err := New().Analyze("u", []byte(`<html><body><p>Just text</p></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, models.StatusOK, record.Status)
	assert.Empty(t, record.Common)
	assert.Zero(t, record.Total)
}

func TestCustomKeywords(t *testing.T) {
	a := NewWithConfig(&Config{Keywords: []string{"download"}})
	assert.True(t, a.IsCTA("Download the report"))
	assert.False(t, a.IsCTA("Sign up"))
}

func TestFailed(t *testing.T) {
	err := errors.New("timeout")
	record := Failed("https://example.com", err)

	assert.True(t, record.Failed())
	assert.Equal(t, err, record.Err)
	assert.Zero(t, record.Total)
}
