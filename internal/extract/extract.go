package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ContentSelector picks the wiki content region. Only the first match is used.
const ContentSelector = "div.mw-parser-output"

const (
	// MinRawRunes is the exclusive lower bound on a list item's trimmed length.
	MinRawRunes = 40
	// MinCleanRunes is the exclusive lower bound after citation markers are stripped.
	MinCleanRunes = 35
)

// ExcludedPrefixes are citation and attribution lead-ins. Items starting with
// any of these (case-insensitively) are source notes, not quotations.
var ExcludedPrefixes = []string{
	"Introduction", "Speech at", "Interview", "Press release",
	"At the", "On the", "Quoted in", "ISBN", "p. ", "pp. ",
	"edition", "published", "Source:", "attributed",
}

var (
	bracketMarker = regexp.MustCompile(`\[.*?\]`)
	yearMarker    = regexp.MustCompile(`\([0-9]{4}\)`)
)

// FromHTML parses input and returns the quotation candidates found in the
// content region. A document without a content region yields no candidates
// and no error.
func FromHTML(input []byte) ([]string, error) {
	doc, err := parseDocument(input)
	if err != nil {
		return nil, err
	}
	return Quotes(doc, ContentSelector), nil
}

func parseDocument(input []byte) (*goquery.Document, error) {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(node), nil
}

// Quotes walks every list item under the first element matching selector and
// returns the cleaned candidates, deduplicated in first-seen order.
func Quotes(doc *goquery.Document, selector string) []string {
	region := doc.Find(selector).First()
	if region.Length() == 0 {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	region.Find("li").Each(func(_ int, li *goquery.Selection) {
		q, ok := Candidate(li.Text())
		if !ok {
			return
		}
		if _, dup := seen[q]; dup {
			return
		}
		seen[q] = struct{}{}
		out = append(out, q)
	})
	return out
}

// Candidate applies the filtering rules to the raw text of one list item.
// It reports the cleaned quotation and whether the item survived.
func Candidate(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) <= MinRawRunes {
		return "", false
	}
	lower := strings.ToLower(text)
	if IsAttribution(lower) || strings.Contains(lower, "isbn") {
		return "", false
	}
	clean := Clean(text)
	if utf8.RuneCountInString(clean) <= MinCleanRunes {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(clean), "by ") {
		return "", false
	}
	return clean, true
}

// IsAttribution reports whether s starts with one of ExcludedPrefixes,
// ignoring case.
func IsAttribution(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range ExcludedPrefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Clean strips footnote brackets and (YYYY) year markers, then keeps only the
// first line. Wiki pages put the source of a quote on the following line.
func Clean(text string) string {
	s := bracketMarker.ReplaceAllString(text, "")
	s = yearMarker.ReplaceAllString(s, "")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
