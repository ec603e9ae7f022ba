package detect

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Grouping-key cleanup. Reference codes go first so their digits do not
// survive as standalone numbers.
var (
	refCodeRe      = regexp.MustCompile(`(?i)\b[a-z]{1,3}\d+[a-z]?\b`)
	numberRe       = regexp.MustCompile(`\b\d+\b`)
	singleLetterRe = regexp.MustCompile(`(?i)\b[a-z]\b`)
	digitsRe       = regexp.MustCompile(`[0-9]+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// textRule is one ordered (match, replacement) step of a cleanup chain.
// Rules are applied in sequence; later rules rely on earlier ones having
// already stripped noise, so the order is load-bearing.
type textRule struct {
	re          *regexp.Regexp
	replacement string
}

// nameRules derive a human-friendly schedule name from a raw description.
// Multi-word phrases are matched before their single-word substrings.
var nameRules = []textRule{
	{regexp.MustCompile(`(?i)\bSALARY\b`), "Salary"},
	{regexp.MustCompile(`(?i)\bPAYROLL\b`), "Payroll"},
	{regexp.MustCompile(`(?i)\bDIRECT DEPOSIT\b`), ""},
	{regexp.MustCompile(`(?i)\bDEPOSIT\b`), ""},
	{regexp.MustCompile(`(?i)\bTRANSFER FROM\b`), ""},
	{regexp.MustCompile(`(?i)\bPAYMENT FROM\b`), ""},
	{regexp.MustCompile(`(?i)\bCREDIT\b`), ""},
	{regexp.MustCompile(`(?i)\b(LTD|LIMITED|PLC|INC|LLC|CORP)\b`), ""},
}

// sourceNoiseRe strips payment-mechanics tokens when deriving the payer.
var sourceNoiseRe = regexp.MustCompile(`(?i)\b(SALARY|PAYROLL|DEPOSIT|DIRECT|TRANSFER|FROM|PAYMENT|CREDIT)\b`)

var titleCaser = cases.Title(language.English)

// normalizeKey reduces a transaction description to its grouping key:
// reference codes, standalone numbers and isolated letters removed,
// whitespace collapsed, lower-cased. Amount is deliberately not part of
// the key; income can vary across occurrences.
func normalizeKey(description string) string {
	s := refCodeRe.ReplaceAllString(description, " ")
	s = numberRe.ReplaceAllString(s, " ")
	s = singleLetterRe.ReplaceAllString(s, " ")
	return strings.ToLower(collapseWhitespace(s))
}

// suggestName derives a display name for a detected pattern.
func suggestName(description string) string {
	s := description
	for _, rule := range nameRules {
		s = rule.re.ReplaceAllString(s, rule.replacement)
	}
	return titleCaser.String(collapseWhitespace(s))
}

// suggestSource derives the likely payer from a description. Falls back to
// a placeholder when nothing survives the noise filter.
func suggestSource(description string) string {
	s := sourceNoiseRe.ReplaceAllString(description, " ")
	s = digitsRe.ReplaceAllString(s, "")
	s = collapseWhitespace(s)
	if s == "" {
		return "Unknown Source"
	}
	return titleCaser.String(s)
}

// matchPattern builds a short matching hint: digits stripped, up to the
// first three tokens longer than two characters.
func matchPattern(description string) string {
	s := digitsRe.ReplaceAllString(description, "")
	var kept []string
	for _, token := range strings.Fields(s) {
		if len(token) > 2 {
			kept = append(kept, token)
		}
		if len(kept) == 3 {
			break
		}
	}
	return strings.Join(kept, " ")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
