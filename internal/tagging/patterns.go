package tagging

import "regexp"

// Patterns are compiled once at package init and shared read-only across all
// document workers.
var (
	// deductibleRe matches terms like "deductible", "excess", or phrases
	// indicating the policyholder bears part of a claim, and captures up to
	// ~40 characters of descriptive content following the keyword(s).
	deductibleRe = regexp.MustCompile(
		`(?i)(?:deductible|excess|you will bear up to|you are liable for)\s*[:\-]?\s*([A-Za-z0-9,\. ]{1,40})`)

	// waitingRe identifies phrases such as "waiting period of 24 months" or
	// "waiting periods 12 months" and captures the numeric duration + unit.
	waitingRe = regexp.MustCompile(
		`(?i)waiting periods?\s*(?:of\s*)?(\d+\s*(?:months|years))`)

	// exclusionRe detects exclusion sections by heading or phrase start:
	// "Exclusions", "What is not covered", "We will not pay".
	exclusionRe = regexp.MustCompile(
		`(?i)\b(exclusions?|what (?:is )?not covered|we will not pay)\b`)

	// currencyRe matches currency codes/symbols followed by numeric amounts,
	// e.g. "INR 50,000", "Rs. 10,000", "$250".
	currencyRe = regexp.MustCompile(
		`(?:INR|Rs\.?|₹|\$|USD|EUR)\s*[0-9,\.]+`)
)
