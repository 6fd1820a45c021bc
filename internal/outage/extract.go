package outage

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Names of the object literals the schedule page assigns in inline scripts.
const (
	StreetsObject = "DisconSchedule.streets"
	PresetObject  = "DisconSchedule.preset"
	FactObject    = "DisconSchedule.fact"
)

// CSRFField is the form field the AJAX endpoint validates.
const CSRFField = "_csrf-dtek-oem"

// ExtractNamedObject returns the object literal assigned to name in html,
// from its opening brace to the matching closing brace. Braces inside
// double-quoted strings are not counted.
func ExtractNamedObject(html, name string) (string, error) {
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `\s*=\s*`)
	loc := re.FindStringIndex(html)
	if loc == nil {
		return "", &ExtractionError{Name: name, Reason: "not found in page"}
	}
	start := loc[1]
	if start >= len(html) || html[start] != '{' {
		return "", &ExtractionError{Name: name, Reason: "expected an object literal"}
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(html); i++ {
		c := html[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return html[start : i+1], nil
			}
		}
	}
	return "", &ExtractionError{Name: name, Reason: "unbalanced braces"}
}

// ParseObject decodes a JavaScript object literal into v. The provider emits
// plain JSON apart from escaped forward slashes.
func ParseObject(raw string, v any) error {
	cleaned := strings.ReplaceAll(raw, `\/`, "/")
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &ParseError{What: "object literal", Err: err}
	}
	return nil
}

// extractCSRFToken finds the token in the page's hidden form input, falling
// back to the csrf-token meta tag. It returns "" when neither is present.
func extractCSRFToken(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if v, ok := doc.Find(`input[name="` + CSRFField + `"]`).First().Attr("value"); ok && v != "" {
		return v
	}
	return doc.Find(`meta[name="csrf-token"]`).First().AttrOr("content", "")
}
