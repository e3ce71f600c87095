package tagging

import "strings"

// exclusionScanLimit bounds how far into a section body the exclusion check
// looks. Exclusion headings sit near the top of a section, so scanning the
// whole body buys nothing.
const exclusionScanLimit = 2000

// Features holds the regex-derived signals for one section. Empty strings
// mean "not found"; callers decide how absence is serialized.
type Features struct {
	Deductible    string
	WaitingPeriod string
	IsExclusion   bool
}

// Tag computes all three signals for a section. Pure function; the checks are
// independent and a section may carry any combination of them.
func Tag(title, body string) Features {
	return Features{
		Deductible:    FindDeductible(body),
		WaitingPeriod: FindWaitingPeriod(body),
		IsExclusion:   IsExclusionSection(title, body),
	}
}

// FindDeductible extracts deductible/excess information from a block of text.
// Returns the captured detail (e.g. "Rs 5,000 per claim") trimmed, or "".
func FindDeductible(text string) string {
	m := deductibleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FindWaitingPeriod extracts a waiting period duration such as "24 months" or
// "2 years". Returns the captured duration trimmed, or "".
func FindWaitingPeriod(text string) string {
	m := waitingRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// IsExclusionSection reports whether a section should be flagged as an
// exclusion, checking the title and the first 2000 characters of the body.
func IsExclusionSection(title, body string) bool {
	return exclusionRe.MatchString(title) || exclusionRe.MatchString(Truncate(body, exclusionScanLimit))
}

// FindCurrency returns the first currency amount mention ("INR 50,000",
// "$250") in the text, or "".
func FindCurrency(text string) string {
	return currencyRe.FindString(text)
}

// FindAllCurrency returns every currency amount mention in the text.
func FindAllCurrency(text string) []string {
	return currencyRe.FindAllString(text, -1)
}

// Truncate returns at most n characters (runes, not bytes) of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
