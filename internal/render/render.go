// Package render turns the text edits implied by applied structural
// edits back into source text. Targeted mode splices edit spans over the
// original bytes, leaving everything else untouched byte-for-byte; full
// mode additionally re-derives the whole file through the language
// backend's formatter (done by the engine, which owns the backend).
package render

import (
	"fmt"
	"sort"

	"mend/internal/tree"
)

// Mode selects the rendering strategy for a run.
type Mode uint8

const (
	// ModeTargeted reuses original token spans outside changed regions.
	ModeTargeted Mode = iota
	// ModeFull discards original formatting and re-derives the file.
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeTargeted:
		return "targeted"
	case ModeFull:
		return "full"
	}
	return "unknown"
}

// ParseMode parses a command-line mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "targeted", "":
		return ModeTargeted, nil
	case "full":
		return ModeFull, nil
	default:
		return ModeTargeted, fmt.Errorf("render: unknown mode %q (want targeted or full)", s)
	}
}

// Splice applies the edits to src and returns the new content. Edits
// are validated as a whole, ordered by position, and merged in a single
// sweep over src. Overlapping edits, out-of-range spans, or stale
// OldText guards abort the whole splice; src is never partially
// modified.
func Splice(src []byte, edits []tree.TextEdit) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}

	ordered := make([]tree.TextEdit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Span.Start == ordered[j].Span.Start {
			return ordered[i].Span.End < ordered[j].Span.End
		}
		return ordered[i].Span.Start < ordered[j].Span.Start
	})

	size := len(src)
	for i := range ordered {
		span := ordered[i].Span
		if int(span.End) > len(src) || span.Start > span.End {
			return nil, fmt.Errorf("render: edit span %s out of range (len %d)", span, len(src))
		}
		if i > 0 && span.Overlaps(ordered[i-1].Span) {
			return nil, fmt.Errorf("render: overlapping edits at %s and %s", span, ordered[i-1].Span)
		}
		if old := ordered[i].OldText; old != "" && string(src[span.Start:span.End]) != old {
			return nil, fmt.Errorf("render: content at %s does not match expected text", span)
		}
		size += len(ordered[i].NewText) - int(span.Len())
	}

	out := make([]byte, 0, size)
	var cursor uint32
	for _, e := range ordered {
		out = append(out, src[cursor:e.Span.Start]...)
		out = append(out, e.NewText...)
		cursor = e.Span.End
	}
	return append(out, src[cursor:]...), nil
}
