package parser

import (
	"regexp"
	"strings"
)

// reactMarker matches a field keyword anchored at a line start. ACTION_INPUT
// precedes ACTION in the alternation so the longer keyword wins.
var reactMarker = regexp.MustCompile(`(?m)^[ \t]*(THOUGHT|ACTION_INPUT|ACTION|FINAL_ANSWER|ANSWER)[ \t]*:[ \t]*`)

var reactKeywords = []string{"THOUGHT", "ACTION", "ACTION_INPUT", "FINAL_ANSWER", "ANSWER"}

// reactParser recognizes the single-keyword line format. On each chunk it
// re-scans the cumulative buffer: a field's body runs from its keyword to the
// start of the next recognized keyword, or to end of buffer while the field
// is still open.
type reactParser struct {
	session
}

func newReactParser() *reactParser {
	return &reactParser{}
}

func (p *reactParser) ParseChunk(chunk string) []Event {
	if chunk == "" || p.finalized {
		return nil
	}
	p.buf.WriteString(chunk)
	return p.diff(p.derive(false))
}

func (p *reactParser) Finalize() []Event {
	p.finalized = true
	return p.diff(p.derive(true))
}

func (p *reactParser) Reset() {
	p.reset()
}

func (p *reactParser) State() *State {
	return p.snapshot()
}

type reactPos struct {
	name         string
	start        int
	contentStart int
}

func (p *reactParser) derive(atEOF bool) candidate {
	buf := p.buf.String()

	var markers []reactPos
	for _, m := range reactMarker.FindAllStringSubmatchIndex(buf, -1) {
		markers = append(markers, reactPos{
			name:         buf[m[2]:m[3]],
			start:        m[0],
			contentStart: m[1],
		})
	}

	// First occurrence of each field wins; later duplicates are ignored so
	// only the first fully recognized action is ever acted upon.
	first := map[string]int{}
	for i, m := range markers {
		name := m.name
		if name == "FINAL_ANSWER" {
			name = "ANSWER"
		}
		if _, ok := first[name]; !ok {
			first[name] = i
		}
	}

	segment := func(i int) (raw string, bounded bool) {
		end := len(buf)
		if i+1 < len(markers) {
			return buf[markers[i].contentStart:markers[i+1].start], true
		}
		return buf[markers[i].contentStart:end], false
	}

	var c candidate

	if i, ok := first["THOUGHT"]; ok {
		raw, bounded := segment(i)
		c.thoughtDone = bounded
		if bounded {
			c.thought = strings.TrimSpace(raw)
		} else {
			c.thought = publishable(raw)
		}
	}

	if i, ok := first["ACTION"]; ok {
		raw, bounded := segment(i)
		c.actionNameDone = bounded || atEOF
		if c.actionNameDone {
			c.actionName = strings.TrimSpace(raw)
		}
	}

	if i, ok := first["ACTION_INPUT"]; ok {
		raw, bounded := segment(i)
		c.actionSeen = true
		c.actionRaw = raw
		c.actionBounded = bounded || atEOF
	}

	if i, ok := first["ANSWER"]; ok {
		raw, bounded := segment(i)
		// The answer is the terminal field: nothing follows it, so end of
		// buffer on the finalize pass counts as its boundary.
		c.answerDone = bounded || atEOF
		if c.answerDone {
			c.answer = strings.TrimSpace(raw)
		} else {
			c.answer = publishable(raw)
		}
	}

	c.section = SectionNone
	if len(markers) > 0 {
		switch markers[len(markers)-1].name {
		case "THOUGHT":
			c.section = SectionThought
		case "ACTION", "ACTION_INPUT":
			c.section = SectionAction
		default:
			c.section = SectionAnswer
		}
	}

	return c
}

// publishable returns the portion of an open field body that is safe to emit.
// The trailing line is held back while it could still become a field keyword
// once more text arrives, and surrounding whitespace is withheld so the
// published text stays a prefix of the final trimmed content.
func publishable(raw string) string {
	if nl := strings.LastIndexByte(raw, '\n'); nl >= 0 && isKeywordPrefix(raw[nl+1:]) {
		raw = raw[:nl]
	}
	return strings.TrimSpace(raw)
}

func isKeywordPrefix(line string) bool {
	t := strings.Trim(line, " \t\r")
	if t == "" {
		return true
	}
	for _, kw := range reactKeywords {
		if strings.HasPrefix(kw, t) {
			return true
		}
	}
	return false
}
