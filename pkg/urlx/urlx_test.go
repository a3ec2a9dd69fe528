package urlx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraulu/webfs/pkg/urlx"
)

func TestParseComponents(t *testing.T) {
	u := urlx.Parse("http://example.com/dir/page;fmt=raw?q=1#top")

	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "/dir/page", u.Path)
	assert.Equal(t, "fmt=raw", u.Params)
	assert.Equal(t, "q=1", u.Query)
	assert.Equal(t, "top", u.Fragment)
	assert.Equal(t, "http://example.com/dir/page;fmt=raw?q=1#top", u.String())
	assert.True(t, u.IsAbs())
}

func TestParseRelative(t *testing.T) {
	u := urlx.Parse("sub/page.html?x=1")

	assert.Empty(t, u.Scheme)
	assert.Empty(t, u.Host)
	assert.Equal(t, "sub/page.html", u.Path)
	assert.Equal(t, "x=1", u.Query)
	assert.False(t, u.IsAbs())
}

func TestParseMalformedKeepsString(t *testing.T) {
	raw := "http://bad host/%zz"
	u := urlx.Parse(raw)

	assert.Equal(t, raw, u.String())
	assert.Empty(t, u.Scheme)
	assert.Empty(t, u.Host)
}

func TestResolve(t *testing.T) {
	base := urlx.Parse("http://a/b/c/d;p?q")

	cases := []struct {
		ref  string
		want string
	}{
		{"g", "http://a/b/c/g"},
		{"./g", "http://a/b/c/g"},
		{"g/", "http://a/b/c/g/"},
		{"../g", "http://a/b/g"},
		{"../../g", "http://a/g"},
		{"//other/x", "http://other/x"},
		{"?y", "http://a/b/c/d;p?y"},
		{"#s", "http://a/b/c/d;p?q#s"},
		{"https://z/", "https://z/"},
	}

	for _, tc := range cases {
		t.Run(tc.ref, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Resolve(tc.ref).String())
		})
	}
}

func TestResolveKeepsBaseSchemeAndHost(t *testing.T) {
	base := urlx.Parse("https://example.com/a/b")

	for _, ref := range []string{"x", "./x", "../x", "/x", "?q=1", "#frag", "x;p=1"} {
		got := base.Resolve(ref)
		assert.Equal(t, "https", got.Scheme, "ref %q", ref)
		assert.Equal(t, "example.com", got.Host, "ref %q", ref)
		assert.True(t, got.IsAbs(), "ref %q", ref)
	}
}

type wrapped struct{ inner string }

func (w wrapped) String() string { return w.inner }

func TestResolveUnwrapsReference(t *testing.T) {
	base := urlx.Parse("http://a/b/")

	got := base.Resolve(wrapped{inner: "sub/"})
	assert.Equal(t, "http://a/b/sub/", got.String())

	got = base.Resolve(urlx.Wrap("sub/"))
	assert.Equal(t, "http://a/b/sub/", got.String())
}

func TestWrapIdempotent(t *testing.T) {
	once := urlx.Wrap("http://a/b")
	twice := urlx.Wrap(once)

	assert.True(t, once.Equal(twice))
	assert.Equal(t, once, twice)
}

func TestUnwrapIdempotent(t *testing.T) {
	raw := "http://a/b"

	assert.Equal(t, raw, urlx.Unwrap(raw))
	assert.Equal(t, raw, urlx.Unwrap(urlx.Unwrap(raw)))
	assert.Equal(t, raw, urlx.Unwrap(urlx.Wrap(raw)))
	assert.Equal(t, raw, urlx.Unwrap(wrapped{inner: raw}))
}

func TestCompare(t *testing.T) {
	a := urlx.Parse("http://a/1")
	b := urlx.Parse("http://a/2")

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(urlx.Parse("http://a/1")))
}

func TestNormalize(t *testing.T) {
	got, err := urlx.Normalize("HTTP://Example.COM:80//a/../b?b=2&a=1#frag")
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/b?a=1&b=2#frag", got)
}
