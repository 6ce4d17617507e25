// Package parse extracts structured signals from unstructured generated
// text: tagged sections, function-call-shaped directives and success/fail
// verdicts. The backend's output is unreliable by construction, so nothing
// in this package ever returns an error; zero matches yield empty results.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/DanJbk/tilequest/pkg/entity"
)

var (
	scratchpadRe = regexp.MustCompile(`(?s)<scratchpad>.*?</scratchpad>`)
	blankRunRe   = regexp.MustCompile(`\n\s*\n`)
	firstCallRe  = regexp.MustCompile(`(\w+)\(`)
	quotedArgRe  = regexp.MustCompile(`"([^"]*)"`)
	setPropRe    = regexp.MustCompile(`set_property\("([^"]+)",\s*"([^"]+)",\s*(.+?)\)`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

// ExtractTags returns the newline-joined contents of every <tag>...</tag>
// pair in text. Matching is case-sensitive and non-nested.
func ExtractTags(text, tag string) string {
	re := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	var parts []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	return strings.Join(parts, "\n")
}

// StripScratchpad removes every <scratchpad>...</scratchpad> span, delimiters
// included, then collapses the blank-line runs left behind. The backend is
// asked to think out loud in scratchpad tags; that reasoning must never reach
// verdict detection or the player. Stripping is idempotent.
func StripScratchpad(text string) string {
	out := scratchpadRe.ReplaceAllString(text, "")
	out = blankRunRe.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}

// ExtractCall returns the ordered argument tuple of the call named name. An
// empty name selects the first identifier( pattern found. Quoted arguments
// win; otherwise the unquoted contents are naively comma-split. No call, no
// args: an empty slice comes back, never an error.
func ExtractCall(text, name string) []string {
	if name == "" {
		m := firstCallRe.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		name = m[1]
	}

	callRe := regexp.MustCompile(regexp.QuoteMeta(name) + `\((.*?)\)`)
	m := callRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	argsStr := strings.TrimSpace(m[1])
	if argsStr == "" {
		return []string{}
	}

	if quoted := quotedArgRe.FindAllStringSubmatch(argsStr, -1); len(quoted) > 0 {
		args := make([]string, 0, len(quoted))
		for _, q := range quoted {
			args = append(args, q[1])
		}
		return args
	}

	parts := strings.Split(argsStr, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return args
}

// IsAffirmative reports whether a resolution response carries a success
// verdict: after scratchpad stripping, "success" appears and "fail" does
// not. Ambiguous or empty responses are negative, by the fail-closed rule.
func IsAffirmative(text string) bool {
	clean := StripScratchpad(text)
	return strings.Contains(clean, "success") && !strings.Contains(clean, "fail")
}

// PropertyUpdate is one parsed set_property directive.
type PropertyUpdate struct {
	Entity   string
	Property string
	Value    entity.Value
}

// ExtractPropertyUpdates collects every set_property("entity", "property",
// value) call in text, coercing each value per ParseValue.
func ExtractPropertyUpdates(text string) []PropertyUpdate {
	matches := setPropRe.FindAllStringSubmatch(text, -1)
	updates := make([]PropertyUpdate, 0, len(matches))
	for _, m := range matches {
		updates = append(updates, PropertyUpdate{
			Entity:   m[1],
			Property: m[2],
			Value:    ParseValue(m[3]),
		})
	}
	return updates
}

// ExtractTrade pulls the (given, received) pair from a trade("a", "b") call.
// ok is false unless exactly two arguments were found.
func ExtractTrade(text string) (given, received string, ok bool) {
	args := ExtractCall(text, "trade")
	if len(args) != 2 {
		return "", "", false
	}
	return args[0], args[1], true
}

// ParseValue coerces a raw argument token into a typed property value:
// true/false (any case) become booleans, digit-only tokens become ints,
// digit tokens with one decimal point become floats, double-quoted tokens
// become strings with the quotes stripped, and anything else passes through
// as a raw string.
func ParseValue(token string) entity.Value {
	switch {
	case strings.EqualFold(token, "true"):
		return entity.Bool(true)
	case strings.EqualFold(token, "false"):
		return entity.Bool(false)
	case digitsRe.MatchString(token):
		n, _ := strconv.Atoi(token)
		return entity.Int(n)
	case digitsRe.MatchString(strings.Replace(token, ".", "", 1)):
		f, _ := strconv.ParseFloat(token, 64)
		return entity.Float(f)
	case len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`):
		return entity.String(token[1 : len(token)-1])
	default:
		return entity.String(token)
	}
}
