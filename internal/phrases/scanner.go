package phrases

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is a token occurrence selected for replacement.
// Start and End are byte offsets into the original text.
type Match struct {
	Start int
	End   int
	Rule  Rule
	Index int // position of Rule in its table
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIgnoreZones replaces the default ignore-zone markers.
func WithIgnoreZones(z IgnoreZones) Option {
	return func(s *Scanner) {
		s.zones = z
	}
}

// WithLinkException controls whether link text inside <a>...</a> is scanned.
// It is enabled by default.
func WithLinkException(on bool) Option {
	return func(s *Scanner) {
		s.linkException = on
	}
}

// WithCaseInsensitive makes token matching ignore case.
// Matching is case-sensitive by default.
func WithCaseInsensitive(on bool) Option {
	return func(s *Scanner) {
		s.caseInsensitive = on
	}
}

// Scanner replaces rule patterns in text. A Scanner is immutable after
// construction and safe for concurrent use.
type Scanner struct {
	rules           []Rule
	zones           IgnoreZones
	linkException   bool
	caseInsensitive bool

	lengths []int                  // distinct raw pattern byte lengths, ascending
	byLen   map[int]map[string]int // raw length -> folded pattern -> rule index
	leads   [256]bool              // possible first bytes of a pattern
}

// NewScanner indexes table for scanning. Later changes to table are not seen.
func NewScanner(table *RuleTable, opts ...Option) *Scanner {
	s := &Scanner{
		rules:         table.Rules(),
		zones:         DefaultIgnoreZones(),
		linkException: true,
		byLen:         make(map[int]map[string]int),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	for i, r := range s.rules {
		key := s.fold(r.Pattern)

		bucket, ok := s.byLen[len(r.Pattern)]
		if !ok {
			bucket = make(map[string]int)
			s.byLen[len(r.Pattern)] = bucket
			s.lengths = append(s.lengths, len(r.Pattern))
		}

		// With case folding two patterns may collide; the earlier one wins.
		if _, taken := bucket[key]; !taken {
			bucket[key] = i
		}

		for _, b := range s.leadBytes(r.Pattern[0]) {
			s.leads[b] = true
		}
	}

	sort.Ints(s.lengths)

	return s
}

// Len returns the number of rules the scanner knows.
func (s *Scanner) Len() int { return len(s.rules) }

// Apply returns text with every selected match replaced. Text outside
// matches, including its casing and whitespace, is copied unchanged.
func (s *Scanner) Apply(text string) string {
	out, _ := s.Replace(text)

	return out
}

// Replace is Apply that also reports the number of replacements made.
func (s *Scanner) Replace(text string) (string, int) {
	matches := s.Find(text)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder

	b.Grow(len(text) + len(matches)*64)

	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m.Start])
		b.WriteString(m.Rule.Replacement())
		last = m.End
	}

	b.WriteString(text[last:])

	return b.String(), len(matches)
}

// Find returns the non-overlapping matches in text, ordered by position.
//
// A candidate is valid when it is a whole token (no letter, digit or
// underscore directly before or after it) and does not touch any ignore
// zone. The leftmost valid candidate wins; at the same start the rule
// registered first wins.
func (s *Scanner) Find(text string) []Match {
	if len(s.rules) == 0 || !s.mayMatch(text) {
		return nil
	}

	zones := s.zones.Spans(text, s.linkException)

	var matches []Match

	zi := 0
	for i := 0; i < len(text); {
		for zi < len(zones) && zones[zi].End <= i {
			zi++
		}

		if zi < len(zones) && zones[zi].Start <= i {
			i = zones[zi].End

			continue
		}

		if !s.leads[text[i]] {
			i++

			continue
		}

		limit := len(text)
		if zi < len(zones) {
			limit = zones[zi].Start
		}

		idx, end := s.matchAt(text, i, limit)
		if idx < 0 {
			i++

			continue
		}

		matches = append(matches, Match{Start: i, End: end, Rule: s.rules[idx], Index: idx})
		i = end
	}

	return matches
}

// matchAt returns the earliest registered rule that matches at i as a whole
// token and ends at or before limit, or -1.
func (s *Scanner) matchAt(text string, i, limit int) (int, int) {
	best, bestEnd := -1, 0

	for _, l := range s.lengths {
		end := i + l
		if end > limit {
			break
		}

		if end < len(text) && !utf8.RuneStart(text[end]) {
			continue
		}

		idx, ok := s.byLen[l][s.fold(text[i:end])]
		if !ok || (best >= 0 && idx > best) {
			continue
		}

		if !s.isBoundary(text, i, end) {
			continue
		}

		best, bestEnd = idx, end
	}

	return best, bestEnd
}

// mayMatch reports whether text contains any byte a pattern can start with.
func (s *Scanner) mayMatch(text string) bool {
	for i := 0; i < len(text); i++ {
		if s.leads[text[i]] {
			return true
		}
	}

	return false
}

func (s *Scanner) isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}

	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}

	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// fold maps each rune of v to the smallest member of its simple folding
// orbit, so equal keys mean strings.EqualFold. Rules are bucketed by raw byte
// length: a token always matches its exact spelling, but case variants of a
// different byte length (ẞ and ß) do not match each other.
func (s *Scanner) fold(v string) string {
	if !s.caseInsensitive {
		return v
	}

	var b strings.Builder
	b.Grow(len(v))

	for _, r := range v {
		b.WriteRune(foldRune(r))
	}

	return b.String()
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		least = min(least, f)
	}

	return least
}

// leadBytes returns the bytes a pattern starting with b may start with in text.
func (s *Scanner) leadBytes(b byte) []byte {
	if !s.caseInsensitive || b >= utf8.RuneSelf {
		return []byte{b}
	}

	lower, upper := byte(unicode.ToLower(rune(b))), byte(unicode.ToUpper(rune(b)))
	if lower == upper {
		return []byte{b}
	}

	return []byte{lower, upper}
}

// Apply replaces the tokens of table in text, skipping zones. It is a
// shorthand for building a one-off Scanner.
func Apply(text string, table *RuleTable, zones IgnoreZones, linkException bool) string {
	return NewScanner(table, WithIgnoreZones(zones), WithLinkException(linkException)).Apply(text)
}
