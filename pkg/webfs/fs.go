// Package webfs presents remote web content through filesystem-like
// abstractions: a Dir is a page whose value lies in the links it
// contains, a File is a leaf resource such as an image.
package webfs

import (
	"net/http"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"

	"github.com/devraulu/webfs/pkg/cache"
	"github.com/devraulu/webfs/pkg/urlx"
)

// DefaultUserAgent is the fixed browser identification sent on every
// fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/111.0.0.0 Safari/537.36"

// memoSize bounds each memo table to the most-recently-used 1024 URLs.
const memoSize = 1024

// FS owns the HTTP client, the blob-store registry and the in-process
// memo tables. Pages are created from an FS and share its caches; at
// most one computation per URL key proceeds at a time.
type FS struct {
	client    *http.Client
	userAgent string
	registry  *cache.Registry
	storeName string

	bytes    *lru.Cache[string, []byte]
	docs     *lru.Cache[string, *goquery.Document]
	listings *lru.Cache[string, *List]
	group    singleflight.Group
}

type Option func(*FS)

// WithClient replaces the default no-timeout HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *FS) { f.client = c }
}

func WithUserAgent(ua string) Option {
	return func(f *FS) { f.userAgent = ua }
}

// WithRegistry points the FS at a specific blob-store registry instead
// of the process default.
func WithRegistry(r *cache.Registry) Option {
	return func(f *FS) { f.registry = r }
}

// WithStore sets the logical blob-store name ("html" by default).
func WithStore(name string) Option {
	return func(f *FS) { f.storeName = name }
}

func New(opts ...Option) *FS {
	f := &FS{
		client:    &http.Client{},
		userAgent: DefaultUserAgent,
		storeName: "html",
	}
	for _, opt := range opts {
		opt(f)
	}
	f.bytes, _ = lru.New[string, []byte](memoSize)
	f.docs, _ = lru.New[string, *goquery.Document](memoSize)
	f.listings, _ = lru.New[string, *List](memoSize)
	return f
}

func (f *FS) store() (cache.BlobStore, error) {
	if f.registry != nil {
		return f.registry.Get(f.storeName)
	}
	return cache.Get(f.storeName)
}

// Page wraps a URL as a plain page.
func (f *FS) Page(url string) *Page {
	return &Page{fs: f, url: urlx.Wrap(url)}
}

// Dir wraps a URL as a directory-like page.
func (f *FS) Dir(url string) *Dir {
	return &Dir{Page{fs: f, url: urlx.Wrap(url)}}
}

// File wraps a URL as a leaf resource.
func (f *FS) File(url string) *File {
	return &File{Page{fs: f, url: urlx.Wrap(url)}}
}

func (f *FS) dirAt(a Annotated) *Dir {
	return &Dir{Page{fs: f, url: a.URL, src: a.Node}}
}

func (f *FS) fileAt(a Annotated) *File {
	return &File{Page{fs: f, url: a.URL, src: a.Node}}
}

// Annotated is a resolved URL carrying a non-owning back-reference to
// the markup element it was extracted from.
type Annotated struct {
	URL  urlx.URL
	Node *html.Node
}

func (a Annotated) String() string { return a.URL.String() }
