package models

// Element is the kind of DOM element a CTA text was taken from
type Element string

const (
	ElementButton Element = "Button"
	ElementLink   Element = "Link"
	ElementSpan   Element = "Span"
	ElementDiv    Element = "Div"
)

// CTA is a call-to-action text found on a page
type CTA struct {
	Text    string  `json:"text" yaml:"text"`
	Element Element `json:"element,omitempty" yaml:"element,omitempty"`
}

// CTARecord is the call-to-action analysis of one URL.
//
// Body always holds every matched CTA, so Header and Footer entries are
// counted again in Body.
type CTARecord struct {
	URL    string      `json:"url" yaml:"url"`
	Status FetchStatus `json:"status" yaml:"status"`
	Err    error       `json:"-" yaml:"-"`
	Common []CTA       `json:"common" yaml:"common"`
	Header []CTA       `json:"header" yaml:"header"`
	Footer []CTA       `json:"footer" yaml:"footer"`
	Body   []CTA       `json:"body" yaml:"body"`
	Total  int         `json:"total" yaml:"total"`
}

// Failed reports whether the page could not be analyzed.
func (r CTARecord) Failed() bool {
	return r.Status == StatusFailed
}

// Texts returns the text of each CTA in order.
func Texts(ctas []CTA) []string {
	out := make([]string, len(ctas))
	for i, c := range ctas {
		out[i] = c.Text
	}
	return out
}
