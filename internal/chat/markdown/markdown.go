// Package markdown segments message text into typed spans for rendering:
// plain text, **bold** emphasis, and ``` fenced code blocks. It is a single
// forward scan; anything that is not a complete marker pair falls through as
// plain text, and input with no markers comes back as one plain segment.
package markdown

import "strings"

const (
	SegmentText = "text"
	SegmentBold = "bold"
	SegmentCode = "code"
)

type Segment struct {
	Type     string
	Language string // fenced-block language tag, code segments only
	Content  string
}

const (
	fence    = "```"
	emphasis = "**"
)

// Parse splits text into ordered segments. The same input always yields the
// same segment list.
func Parse(text string) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	plain := func(s string) {
		if s != "" {
			segments = append(segments, Segment{Type: SegmentText, Content: s})
		}
	}

	rest := text
	for rest != "" {
		fenceAt := strings.Index(rest, fence)
		boldAt := strings.Index(rest, emphasis)

		// A fence opener also contains "**"-free backticks, but a bold marker
		// can sit before a fence; take whichever marker comes first.
		switch {
		case fenceAt >= 0 && (boldAt < 0 || fenceAt <= boldAt):
			seg, after, ok := scanFence(rest[fenceAt:])
			if !ok {
				// Unterminated fence: everything from here on is plain.
				plain(rest)
				return segments
			}
			plain(rest[:fenceAt])
			segments = append(segments, seg)
			rest = after

		case boldAt >= 0:
			content, after, ok := scanBold(rest[boldAt:])
			if !ok {
				plain(rest)
				return segments
			}
			plain(rest[:boldAt])
			// an empty "****" pair is consumed without producing a segment
			if content != "" {
				segments = append(segments, Segment{Type: SegmentBold, Content: content})
			}
			rest = after

		default:
			plain(rest)
			return segments
		}
	}
	return segments
}

// scanFence consumes a "```lang\n...\n```" block starting at s[0]. It returns
// the code segment and the remainder after the closing fence.
func scanFence(s string) (Segment, string, bool) {
	body := s[len(fence):]

	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return Segment{}, "", false
	}
	lang := strings.TrimSpace(body[:nl])
	body = body[nl+1:]

	end := strings.Index(body, fence)
	if end < 0 {
		return Segment{}, "", false
	}

	content := strings.TrimRight(body[:end], "\n")
	return Segment{Type: SegmentCode, Language: lang, Content: strings.TrimSpace(content)}, body[end+len(fence):], true
}

// scanBold consumes a "**...**" span starting at s[0]. An unterminated marker
// fails; an empty span succeeds with empty content so the caller can skip it
// and keep scanning.
func scanBold(s string) (string, string, bool) {
	body := s[len(emphasis):]
	end := strings.Index(body, emphasis)
	if end < 0 {
		return "", "", false
	}
	return body[:end], body[end+len(emphasis):], true
}
