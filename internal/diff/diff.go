// Package diff turns two document texts into an ordered list of significant changes.
package diff

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"policytrack/internal/model"
)

// Options bounds the engine's output.
type Options struct {
	// MinChars drops spans shorter than this after trimming.
	MinChars int
	// MaxChanges keeps the first N changes in document order.
	MaxChanges   int
	ExcerptChars int
	TitleChars   int
	// Timeout caps the LCS search; zero means no limit.
	Timeout time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MinChars:     10,
		MaxChanges:   15,
		ExcerptChars: 500,
		TitleChars:   60,
		Timeout:      5 * time.Second,
	}
}

// Result is the change list and its aggregate stats.
type Result struct {
	Changes []model.Change  `json:"changes"`
	Stats   model.DiffStats `json:"stats"`
}

// Engine compares document texts. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// New creates an Engine, filling zero options with defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.MinChars <= 0 {
		opts.MinChars = def.MinChars
	}
	if opts.MaxChanges <= 0 {
		opts.MaxChanges = def.MaxChanges
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = def.ExcerptChars
	}
	if opts.TitleChars <= 0 {
		opts.TitleChars = def.TitleChars
	}
	return &Engine{opts: opts}
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs to single spaces and trims, so formatting-only
// edits never register as changes.
func Normalize(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Compare diffs oldText against newText. documentName is only used for labelling.
func (e *Engine) Compare(oldText, newText, documentName string) Result {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = e.opts.Timeout

	a, b := Normalize(oldText), Normalize(newText)
	// One alignment per unordered pair: A→B and B→A differ only in span types
	swapped := a > b
	if swapped {
		a, b = b, a
	}
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if swapped {
		diffs = invert(diffs)
	}

	res := Result{Changes: make([]model.Change, 0)}
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		text := strings.TrimSpace(d.Text)
		if utf8.RuneCountInString(text) < e.opts.MinChars {
			continue
		}
		if len(res.Changes) == e.opts.MaxChanges {
			res.Stats.Truncated = true
			break
		}
		res.Changes = append(res.Changes, e.change(len(res.Changes)+1, d.Type, text, documentName))
	}

	for _, c := range res.Changes {
		if c.Type == model.ChangeAdded {
			res.Stats.Added++
		} else {
			res.Stats.Removed++
		}
	}
	res.Stats.Total = len(res.Changes)
	return res
}

// invert turns a B→A script into A→B: inserts become deletes and vice versa, and each
// adjacent pair is reordered so removals still precede additions.
func invert(diffs []diffmatchpatch.Diff) []diffmatchpatch.Diff {
	out := make([]diffmatchpatch.Diff, len(diffs))
	for i, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			d.Type = diffmatchpatch.DiffDelete
		case diffmatchpatch.DiffDelete:
			d.Type = diffmatchpatch.DiffInsert
		}
		out[i] = d
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i].Type == diffmatchpatch.DiffInsert && out[i+1].Type == diffmatchpatch.DiffDelete {
			out[i], out[i+1] = out[i+1], out[i]
			i++
		}
	}
	return out
}

func (e *Engine) change(idx int, op diffmatchpatch.Operation, text, documentName string) model.Change {
	c := model.Change{
		Section: fmt.Sprintf("%d. %s", idx, ellipsize(text, e.opts.TitleChars)),
	}
	n := max(countSentences(text), 1)
	excerpt := ellipsize(text, e.opts.ExcerptChars)

	if op == diffmatchpatch.DiffInsert {
		c.Type = model.ChangeAdded
		c.After = excerpt
		c.Summary = fmt.Sprintf("Added ~%d %s to %s", n, plural(n, "sentence"), label(documentName))
	} else {
		c.Type = model.ChangeRemoved
		c.Before = excerpt
		c.Summary = fmt.Sprintf("Removed ~%d %s from %s", n, plural(n, "sentence"), label(documentName))
	}
	return c
}

var sentenceBreak = regexp.MustCompile(`[.!?]\s+`)

// countSentences approximates sentences as fragments longer than five characters.
func countSentences(text string) int {
	n := 0
	for _, part := range sentenceBreak.Split(text, -1) {
		if len(strings.TrimSpace(part)) > 5 {
			n++
		}
	}
	return n
}

func ellipsize(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "..."
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func label(documentName string) string {
	if documentName == "" {
		return "the document"
	}
	return documentName
}
