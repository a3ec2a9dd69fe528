// Package urlx implements the RFC 1808 view of a URL:
// <scheme>://<host>/<path>;<params>?<query>#<fragment>
// https://www.ietf.org/rfc/rfc1808.txt
package urlx

import (
	"fmt"
	netUrl "net/url"
	"strings"
)

// URL is an immutable value wrapping a raw URL string. The component
// fields are derived once at construction and never mutated; equality
// and ordering follow the raw string.
type URL struct {
	raw      string
	Scheme   string
	Host     string
	Path     string
	Params   string
	Query    string
	Fragment string
}

// Parse decomposes raw into its RFC 1808 components. A relative-only
// string is valid input and yields empty scheme/host. Unparsable input
// yields a URL whose components are empty but whose string form is
// preserved.
func Parse(raw string) URL {
	u := URL{raw: raw}
	parsed, err := netUrl.Parse(raw)
	if err != nil {
		return u
	}
	u.Scheme = parsed.Scheme
	u.Host = parsed.Host
	u.Path, u.Params = splitParams(parsed.Path)
	u.Query = parsed.RawQuery
	u.Fragment = parsed.Fragment
	return u
}

// splitParams peels the ;params component off the final path segment.
func splitParams(path string) (string, string) {
	i := strings.LastIndex(path, "/")
	if j := strings.Index(path[i+1:], ";"); j >= 0 {
		k := i + 1 + j
		return path[:k], path[k+1:]
	}
	return path, ""
}

func (u URL) String() string { return u.raw }

// IsAbs reports whether the URL carries both a scheme and a host.
func (u URL) IsAbs() bool { return u.Scheme != "" && u.Host != "" }

func (u URL) Equal(o URL) bool { return u.raw == o.raw }

func (u URL) Compare(o URL) int { return strings.Compare(u.raw, o.raw) }

// Resolve applies RFC 1808 relative-reference resolution of ref against
// u. The reference may be absolute, scheme-relative, path-relative,
// query-only or fragment-only; when u is absolute the result is always
// absolute. Wrapped values (URL, annotated URLs, any Stringer) are
// unwrapped to their plain string form first.
func (u URL) Resolve(ref any) URL {
	target := Unwrap(ref)
	base, err := netUrl.Parse(u.raw)
	if err != nil {
		return Parse(target)
	}
	rel, err := netUrl.Parse(target)
	if err != nil {
		return Parse(target)
	}
	return Parse(base.ResolveReference(rel).String())
}

// Wrap coerces v into a URL. Wrapping a URL returns it unchanged.
func Wrap(v any) URL {
	if u, ok := v.(URL); ok {
		return u
	}
	return Parse(Unwrap(v))
}

// Unwrap strips URL-wrapper layers until a plain string remains.
func Unwrap(v any) string {
	for {
		switch x := v.(type) {
		case string:
			return x
		case URL:
			return x.raw
		case fmt.Stringer:
			v = x.String()
		default:
			return fmt.Sprint(v)
		}
	}
}
