package papers

import (
	"regexp"
	"strings"
)

// Paper is one entry extracted from a paper-listing reply.
type Paper struct {
	Title     string `json:"title"`
	Authors   string `json:"authors,omitempty"`
	Published string `json:"published,omitempty"`
	Summary   string `json:"summary,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Title lines come back in several markdown styles depending on the model's
// mood; ordered from most to least specific.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\.\s*\*\*Title\*\*:?\s*(.*)`), // 1. **Title**: ...
	regexp.MustCompile(`^\d+\.\s*\*\*(.*?)\*\*`),              // 1. **Some Title**
	regexp.MustCompile(`^\d+\.\s*__(.*?)__`),                  // 1. __Some Title__
	regexp.MustCompile(`^\d+\.\s*\*(.*?)\*`),                  // 1. *Some Title*
	regexp.MustCompile(`^\d+\.\s*(.*)$`),                      // 1. Some Title
	regexp.MustCompile(`(?i)^Title:?[ \t]*(.+)`),              // Title: ...
}

var (
	authorsPattern   = regexp.MustCompile(`(?i)Authors?:?\s*(.*)`)
	publishedPattern = regexp.MustCompile(`Published:?\s*([A-Za-z]+ \d{1,2}, \d{4})`)
	summaryPattern   = regexp.MustCompile(`(?i)(?:Summary|Abstract):?\s*(.*)`)
	arxivURLPattern  = regexp.MustCompile(`https?://arxiv\.org/[\w\-/.]+`)
	markdownLink     = regexp.MustCompile(`^\[(.*?)\]\([^)]+\)`)
	numberedLine     = regexp.MustCompile(`^\d+\. `)
)

// Parse extracts paper entries from a reply, tolerating the markdown and
// plain-text field label variants the flow produces.
func Parse(text string) []Paper {
	var result []Paper
	var current *Paper

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := matchTitle(line); ok {
			if current != nil {
				result = append(result, *current)
			}
			if title == "" {
				title = "Unknown Title"
			}
			current = &Paper{Title: title}
			continue
		}
		if current == nil {
			continue
		}

		if m := publishedPattern.FindStringSubmatch(line); m != nil {
			current.Published = cleanField(m[1])
			continue
		}
		if m := summaryPattern.FindStringSubmatch(line); m != nil {
			current.Summary = cleanField(m[1])
			continue
		}
		if m := authorsPattern.FindStringSubmatch(line); m != nil {
			current.Authors = cleanField(m[1])
			continue
		}
		if m := arxivURLPattern.FindString(line); m != "" {
			current.URL = m
			continue
		}
	}

	if current != nil {
		result = append(result, *current)
	}
	return result
}

// IsListing reports whether the reply looks like a paper list rather than
// free-form prose.
func IsListing(text string) bool {
	if len(Parse(text)) >= 2 {
		return true
	}

	numbered := 0
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if numberedLine.MatchString(line) {
			numbered++
		}
	}
	return numbered >= 2
}

func matchTitle(line string) (string, bool) {
	for _, pat := range titlePatterns {
		m := pat.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		// Titles sometimes arrive as markdown links; keep only the text.
		if link := markdownLink.FindStringSubmatch(title); link != nil {
			title = strings.TrimSpace(link[1])
		}
		return cleanField(title), true
	}
	return "", false
}

func cleanField(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), ":*_"))
}
