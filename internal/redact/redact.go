// Package redact scrubs sensitive substrings from a prompt before it leaves
// the process. The pipeline is pure and total: it performs no I/O and never
// fails for well-formed input.
//
// Rules apply independently and cumulatively in a fixed order
// (emails, paths, tokens) so overlapping matches resolve deterministically.
// Categories are deliberately coarse-grained (counted, not itemized) so a
// confirmation UI can summarize "tokens(3)" without leaking original values.
package redact

import (
	"regexp"

	"github.com/quillworks/quillai/internal/domain"
)

// Placeholders substituted for matched spans. None of them re-match any rule,
// which makes the pipeline idempotent.
const (
	EmailPlaceholder = "[REDACTED_EMAIL]"
	PathPlaceholder  = "[REDACTED_PATH]"
	TokenPlaceholder = "[REDACTED_TOKEN]"
)

// Options selects which categories to scrub.
type Options struct {
	Emails bool
	Paths  bool
	Tokens bool
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Drive-letter and UNC forms first, then POSIX multi-segment absolute paths.
	drivePathRe = regexp.MustCompile(`\b[A-Za-z]:\\[^\s"']+`)
	uncPathRe   = regexp.MustCompile(`\\\\[A-Za-z0-9._\-]+\\[^\s"']+`)
	posixPathRe = regexp.MustCompile(`/[\w.\-]+(?:/[\w.\-]+)+`)

	// key=value / key: value assignments with a secret-like key name. The value
	// must not start with '[' so an already-substituted placeholder cannot
	// match again.
	assignmentRe = regexp.MustCompile(`(?i)\b(api[_\-]?key|access[_\-]?key|secret[_\-]?key|client[_\-]?secret|auth[_\-]?token|token|secret|password|passwd|pwd|credentials?)\b(\s*[:=]\s*)([^\s\[]\S*)`)
	bearerRe     = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=\-]+`)
	jwtRe        = regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]*\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\b`)
)

// Redact applies the enabled rules to text and reports how many replacements
// each category performed. Empty input yields an outcome with no categories
// applied and the text unchanged.
func Redact(text string, opts Options) domain.RedactionOutcome {
	outcome := domain.RedactionOutcome{Text: text}
	if text == "" {
		return outcome
	}

	if opts.Emails {
		var count int
		outcome.Text, count = replaceAll(outcome.Text, emailRe, EmailPlaceholder)
		appendCategory(&outcome, domain.CategoryEmails, count)
	}

	if opts.Paths {
		total := 0
		for _, re := range []*regexp.Regexp{drivePathRe, uncPathRe, posixPathRe} {
			var count int
			outcome.Text, count = replaceAll(outcome.Text, re, PathPlaceholder)
			total += count
		}
		appendCategory(&outcome, domain.CategoryPaths, total)
	}

	if opts.Tokens {
		total := 0

		count := len(assignmentRe.FindAllStringIndex(outcome.Text, -1))
		if count > 0 {
			outcome.Text = assignmentRe.ReplaceAllString(outcome.Text, "${1}${2}"+TokenPlaceholder)
			total += count
		}

		var n int
		outcome.Text, n = replaceAll(outcome.Text, bearerRe, "Bearer "+TokenPlaceholder)
		total += n
		outcome.Text, n = replaceAll(outcome.Text, jwtRe, TokenPlaceholder)
		total += n

		appendCategory(&outcome, domain.CategoryTokens, total)
	}

	return outcome
}

func replaceAll(text string, re *regexp.Regexp, placeholder string) (string, int) {
	count := len(re.FindAllStringIndex(text, -1))
	if count == 0 {
		return text, 0
	}
	return re.ReplaceAllString(text, placeholder), count
}

func appendCategory(outcome *domain.RedactionOutcome, category domain.RedactionCategory, count int) {
	if count == 0 {
		return
	}
	outcome.Applied = append(outcome.Applied, domain.CategoryCount{Category: category, Count: count})
}
