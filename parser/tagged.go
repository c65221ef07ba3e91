package parser

import (
	"strings"
)

const (
	tagThought     = "thought"
	tagAction      = "action"
	tagActionInput = "action_input"
	tagFinalAnswer = "final_answer"
)

var taggedTags = []string{
	"<" + tagThought + ">", "</" + tagThought + ">",
	"<" + tagAction + ">", "</" + tagAction + ">",
	"<" + tagActionInput + ">", "</" + tagActionInput + ">",
	"<" + tagFinalAnswer + ">", "</" + tagFinalAnswer + ">",
}

// taggedParser recognizes the nested-tag format. A field's body runs from its
// opening tag to its closing tag; an unclosed body runs to end of buffer. A
// partial trailing tag is held back until it either completes or turns out to
// be plain content.
type taggedParser struct {
	session
}

func newTaggedParser() *taggedParser {
	return &taggedParser{}
}

func (p *taggedParser) ParseChunk(chunk string) []Event {
	if chunk == "" || p.finalized {
		return nil
	}
	p.buf.WriteString(chunk)
	return p.diff(p.derive(false))
}

func (p *taggedParser) Finalize() []Event {
	p.finalized = true
	return p.diff(p.derive(true))
}

func (p *taggedParser) Reset() {
	p.reset()
}

func (p *taggedParser) State() *State {
	return p.snapshot()
}

// element extracts the first occurrence of the named element from buf.
// found reports whether the opening tag is present, closed whether the
// closing tag followed it.
func element(buf, name string) (body string, found, closed bool) {
	open := "<" + name + ">"
	i := strings.Index(buf, open)
	if i < 0 {
		return "", false, false
	}
	body = buf[i+len(open):]
	if j := strings.Index(body, "</"+name+">"); j >= 0 {
		return body[:j], true, true
	}
	return body, true, false
}

func (p *taggedParser) derive(atEOF bool) candidate {
	buf := p.buf.String()

	var c candidate

	if body, found, closed := element(buf, tagThought); found {
		c.thoughtDone = closed
		if closed {
			c.thought = strings.TrimSpace(body)
		} else {
			c.thought = publishableTagged(body)
		}
	}

	if body, found, closed := element(buf, tagAction); found {
		c.actionNameDone = closed || atEOF
		if c.actionNameDone {
			c.actionName = strings.TrimSpace(body)
		}
	}

	if body, found, closed := element(buf, tagActionInput); found {
		c.actionSeen = true
		if closed {
			c.actionRaw = body
		} else {
			c.actionRaw = trimPartialTag(body, atEOF)
		}
		c.actionBounded = closed || atEOF
	}

	if body, found, closed := element(buf, tagFinalAnswer); found {
		c.answerDone = closed || atEOF
		if c.answerDone {
			c.answer = strings.TrimSpace(body)
		} else {
			c.answer = publishableTagged(body)
		}
	}

	c.section = taggedSection(buf)

	return c
}

// taggedSection reports the field whose element was opened last.
func taggedSection(buf string) Section {
	section := SectionNone
	best := -1
	for name, s := range map[string]Section{
		tagThought:     SectionThought,
		tagAction:      SectionAction,
		tagActionInput: SectionAction,
		tagFinalAnswer: SectionAnswer,
	} {
		if i := strings.Index(buf, "<"+name+">"); i > best {
			section = s
			best = i
		}
	}
	return section
}

// publishableTagged returns the portion of an open element body that is safe
// to emit, holding back a trailing partial tag.
func publishableTagged(body string) string {
	return strings.TrimSpace(trimPartialTag(body, false))
}

// trimPartialTag drops a trailing "<..." fragment that could still grow into
// a protocol tag. It applies only to still-open element bodies: a closed
// body is exact, and on the finalize pass nothing more can arrive, so in
// both cases the full body is kept.
func trimPartialTag(body string, atEOF bool) string {
	if atEOF {
		return body
	}
	i := strings.LastIndexByte(body, '<')
	if i < 0 {
		return body
	}
	rest := body[i:]
	for _, tag := range taggedTags {
		if len(rest) < len(tag) && strings.HasPrefix(tag, rest) {
			return body[:i]
		}
	}
	return body
}
