package news

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// Article is the part of a news record that sentiment scoring uses.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// Text is the classified text: title and summary joined and trimmed.
func (a Article) Text() string {
	return strings.TrimSpace(a.Title + " " + a.Summary)
}

var (
	titlePaths   = []string{"content.title", "title"}
	summaryPaths = []string{"content.summary", "summary"}
	linkPaths    = []string{
		"content.canonicalUrl.url", "canonicalUrl.url",
		"content.clickThroughUrl.url", "clickThroughUrl.url",
		"link", "url",
	}
)

// ParseRecord reads a news record in either the nested shape
// ({"content": {"title", "summary", "canonicalUrl": {"url"}}}) or the flat
// shape ({"title", "summary", "link"}).
func ParseRecord(rec json.RawMessage) Article {
	if !gjson.ValidBytes(rec) {
		return Article{}
	}
	doc := gjson.ParseBytes(rec)
	return Article{
		Title:   strings.TrimSpace(firstString(doc, titlePaths)),
		Summary: stripHTML(firstString(doc, summaryPaths)),
		Link:    strings.TrimSpace(firstString(doc, linkPaths)),
	}
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// stripHTML returns the visible text of an HTML fragment. Plain text passes
// through with whitespace collapsed.
func stripHTML(s string) string {
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
