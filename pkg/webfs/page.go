package webfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/browser"
	"golang.org/x/net/html"

	"github.com/devraulu/webfs/pkg/cache"
	"github.com/devraulu/webfs/pkg/urlx"
)

// Page is a remote resource identified by its URL. Raw bytes and the
// parsed document are computed lazily and memoized on the owning FS.
type Page struct {
	fs  *FS
	url urlx.URL
	src *html.Node // source element, set when produced by a listing
}

func (p *Page) URL() urlx.URL { return p.url }

// Source returns the markup element this page's URL was extracted
// from, or nil when the page was constructed directly.
func (p *Page) Source() *html.Node { return p.src }

func (p *Page) String() string { return fmt.Sprintf("Page(%q)", p.url.String()) }

// Bytes returns the raw page content: memo hit, else blob-store load,
// else one network fetch followed by a blob-store save. Only a genuine
// cache miss falls through to the network; storage faults surface.
func (p *Page) Bytes(ctx context.Context) ([]byte, error) {
	key := p.url.String()
	if blob, ok := p.fs.bytes.Get(key); ok {
		return blob, nil
	}

	v, err, _ := p.fs.group.Do("bytes:"+key, func() (any, error) {
		if blob, ok := p.fs.bytes.Get(key); ok {
			return blob, nil
		}

		store, err := p.fs.store()
		if err != nil {
			return nil, err
		}

		blob, err := store.Load(ctx, key)
		if errors.Is(err, cache.ErrNotFound) {
			slog.Debug("cache miss", slog.String("url", key))
			blob, err = p.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			if err := store.Save(ctx, key, blob); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}

		p.fs.bytes.Add(key, blob)
		return blob, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Fetch performs the network GET directly, bypassing both caches. No
// retry: failures propagate to the caller.
func (p *Page) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.fs.userAgent)

	resp, err := p.fs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{URL: p.url.String(), Code: resp.StatusCode}
	}

	slog.Debug("fetched",
		slog.String("url", p.url.String()),
		slog.Int("status_code", resp.StatusCode),
		slog.Int("size", len(body)),
	)
	return body, nil
}

// Text decodes Bytes as UTF-8.
func (p *Page) Text(ctx context.Context) (string, error) {
	blob, err := p.Bytes(ctx)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(blob) {
		return "", fmt.Errorf("%s: %w", p.url.String(), ErrDecode)
	}
	return string(blob), nil
}

// Doc parses Text into a queryable document, memoized per URL.
func (p *Page) Doc(ctx context.Context) (*goquery.Document, error) {
	key := p.url.String()
	if doc, ok := p.fs.docs.Get(key); ok {
		return doc, nil
	}

	v, err, _ := p.fs.group.Do("doc:"+key, func() (any, error) {
		if doc, ok := p.fs.docs.Get(key); ok {
			return doc, nil
		}
		text, err := p.Text(ctx)
		if err != nil {
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err != nil {
			return nil, err
		}
		p.fs.docs.Add(key, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*goquery.Document), nil
}

// Open displays the URL in a local browser. Best effort: failures are
// logged and never abort the caller.
func (p *Page) Open() {
	if err := browser.OpenURL(p.url.String()); err != nil {
		slog.Warn("failed to open browser", slog.String("url", p.url.String()), slog.Any("err", err))
	}
}
