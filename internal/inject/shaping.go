package inject

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Shaping controls text cleanup applied just before injection. The
// effective values come from the injection config, possibly overridden
// by an application profile.
type Shaping struct {
	Capitalize bool
	Punctuate  bool
}

var questionLeads = map[string]struct{}{
	"who": {}, "what": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"which": {}, "whose": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"do": {}, "does": {}, "did": {}, "can": {}, "could": {}, "would": {},
	"should": {}, "will": {}, "shall": {},
}

// Shape trims the transcript and applies sentence-level cleanup.
// Punctuation already present is never doubled, and non-Latin text is
// left alone by the capitalization rule (ToUpper is a no-op there).
func Shape(text string, opts Shaping) string {
	out := strings.TrimSpace(text)
	if out == "" {
		return out
	}
	if opts.Capitalize {
		r, size := utf8.DecodeRuneInString(out)
		if unicode.IsLower(r) {
			out = string(unicode.ToUpper(r)) + out[size:]
		}
	}
	if opts.Punctuate && !endsWithTerminal(out) {
		mark := "."
		if looksLikeQuestion(out) {
			mark = "?"
		}
		// Fullwidth stops after CJK text.
		if last, _ := utf8.DecodeLastRuneInString(out); unicode.Is(unicode.Han, last) {
			if mark == "." {
				mark = "。"
			} else {
				mark = "？"
			}
		}
		out += mark
	}
	return out
}

func endsWithTerminal(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', ',', ':', ';', '。', '！', '？', '，', '：', '；', '…':
		return true
	}
	return false
}

func looksLikeQuestion(s string) bool {
	first := s
	if i := strings.IndexFunc(s, unicode.IsSpace); i > 0 {
		first = s[:i]
	}
	_, ok := questionLeads[strings.ToLower(first)]
	return ok
}
