package sections

import (
	"regexp"
	"strings"
)

// StartTitle is the sentinel title for text that precedes the first heading.
const StartTitle = "start"

// Section is a titled, contiguous span of document text.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"text"`
}

// Heading heuristic: a line is a heading when its trimmed form starts with an
// ALL-CAPS run (uppercase letter followed by three or more uppercase letters,
// spaces, hyphens or apostrophes) or with a numbered prefix like "2. ".
var (
	headingRe  = regexp.MustCompile(`^([A-Z][A-Z\s\-']{3,}|[0-9]+\.\s+)`)
	numberedRe = regexp.MustCompile(`^[0-9]+\.`)
)

// IsHeading reports whether a line would start a new section.
func IsHeading(line string) bool {
	return headingRe.MatchString(strings.TrimSpace(line))
}

// headingTitle returns the title a heading line contributes. Numbered headings
// keep only the numeric prefix ("2. Scope" becomes "2."); downstream datasets
// were built against these titles, so the narrow capture stays.
func headingTitle(trimmed string) string {
	if m := numberedRe.FindString(trimmed); m != "" {
		return m
	}
	return trimmed
}

// Split partitions document text into ordered titled sections. Text before the
// first heading is titled "start"; heading lines themselves never appear in
// any section body.
func Split(text string) []Section {
	lines := strings.Split(text, "\n")
	// Like splitlines: a trailing newline does not yield a phantom empty line,
	// so a document ending on a heading emits no empty trailing section.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var result []Section
	currentTitle := StartTitle
	var buf []string

	flush := func() {
		if len(buf) == 0 {
			return
		}
		result = append(result, Section{
			Title: strings.TrimSpace(currentTitle),
			Body:  strings.TrimSpace(strings.Join(buf, "\n")),
		})
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if headingRe.MatchString(trimmed) {
			flush()
			currentTitle = headingTitle(trimmed)
			buf = nil
		} else {
			buf = append(buf, line)
		}
	}
	flush()

	return result
}
