package webfs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/devraulu/webfs/pkg/urlx"
)

// Entry is a page held by a List: a *Dir or a *File.
type Entry interface {
	URL() urlx.URL
	Source() *html.Node
	Bytes(ctx context.Context) ([]byte, error)
	Text(ctx context.Context) (string, error)
	IsDir() bool
}

// List is an ordered collection of entries, deduplicated by URL.
type List struct {
	entries []Entry
}

// NewList builds a List, dropping later entries whose URL repeats an
// earlier one.
func NewList(entries []Entry) *List {
	seen := make(map[string]bool, len(entries))
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := e.URL().String()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, e)
	}
	return &List{entries: kept}
}

func (l *List) Len() int { return len(l.entries) }

// At returns the entry at position i.
func (l *List) At(i int) Entry { return l.entries[i] }

// Slice returns a new List over entries [i, j).
func (l *List) Slice(i, j int) *List {
	return &List{entries: l.entries[i:j:j]}
}

// Entries returns a copy of the backing slice.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Dirs retains only directory entries, preserving order.
func (l *List) Dirs() *List {
	var out []Entry
	for _, e := range l.entries {
		if e.IsDir() {
			out = append(out, e)
		}
	}
	return &List{entries: out}
}

// Files retains only file entries, preserving order.
func (l *List) Files() *List {
	var out []Entry
	for _, e := range l.entries {
		if !e.IsDir() {
			out = append(out, e)
		}
	}
	return &List{entries: out}
}

// GrepOptions selects one of three search modes. Recursive and Context
// are mutually exclusive.
type GrepOptions struct {
	// Recursive prefetches all entries and matches their full text.
	Recursive bool
	// IgnoreCase makes the match case-insensitive in every mode.
	IgnoreCase bool
	// Context matches the rendering of the entry's source element
	// after walking this many parent steps up from it.
	Context int
}

// Grep filters the list by a regular expression. Plain mode matches
// entry URLs; context mode matches the serialized DOM ancestor of each
// entry's source element; recursive mode matches fetched page text.
func (l *List) Grep(ctx context.Context, pattern string, opts GrepOptions) (*List, error) {
	if opts.Recursive && opts.Context > 0 {
		return nil, fmt.Errorf("%w: pattern=%q recursive=%t context=%d",
			ErrGrepOptions, pattern, opts.Recursive, opts.Context)
	}

	expr := pattern
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Context > 0:
		return l.grepContext(re, opts.Context)
	case opts.Recursive:
		return l.grepRecursive(ctx, re)
	default:
		var out []Entry
		for _, e := range l.entries {
			if re.MatchString(e.URL().String()) {
				out = append(out, e)
			}
		}
		return &List{entries: out}, nil
	}
}

func (l *List) grepContext(re *regexp.Regexp, context int) (*List, error) {
	var out []Entry
	for _, e := range l.entries {
		node := e.Source()
		if node == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotNavigable, e.URL().String())
		}
		for i := 0; i < context && node.Parent != nil; i++ {
			node = node.Parent
		}
		var sb strings.Builder
		if err := html.Render(&sb, node); err != nil {
			return nil, err
		}
		if re.MatchString(sb.String()) {
			out = append(out, e)
		}
	}
	return &List{entries: out}, nil
}

func (l *List) grepRecursive(ctx context.Context, re *regexp.Regexp) (*List, error) {
	l.Prefetch(ctx)
	var out []Entry
	for _, e := range l.entries {
		text, err := e.Text(ctx)
		if err != nil {
			return nil, err
		}
		if re.MatchString(text) {
			out = append(out, e)
		}
	}
	return &List{entries: out}, nil
}

// Prefetch pulls every entry's bytes through the bounded worker pool.
// Individual failures are logged and resurface on later reads.
func (l *List) Prefetch(ctx context.Context) {
	prefetch(ctx, l.entries)
}

// Single returns the sole entry, or ErrNotSingle when the list does
// not hold exactly one.
func (l *List) Single() (Entry, error) {
	if len(l.entries) == 1 {
		return l.entries[0], nil
	}
	return nil, fmt.Errorf("%w: %d entries", ErrNotSingle, len(l.entries))
}

// Bytes delegates to the sole entry.
func (l *List) Bytes(ctx context.Context) ([]byte, error) {
	e, err := l.Single()
	if err != nil {
		return nil, err
	}
	return e.Bytes(ctx)
}

// Text delegates to the sole entry.
func (l *List) Text(ctx context.Context) (string, error) {
	e, err := l.Single()
	if err != nil {
		return "", err
	}
	return e.Text(ctx)
}

// URL delegates to the sole entry.
func (l *List) URL() (urlx.URL, error) {
	e, err := l.Single()
	if err != nil {
		return urlx.URL{}, err
	}
	return e.URL(), nil
}

func (l *List) String() string {
	parts := make([]string, len(l.entries))
	for i, e := range l.entries {
		parts[i] = fmt.Sprint(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
