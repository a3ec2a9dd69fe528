package webfs

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"sort"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Dir is a webpage that acts like a directory. The content itself does
// not matter, except insofar as it points to other pages.
type Dir struct {
	Page
}

func (d *Dir) IsDir() bool { return true }

func (d *Dir) String() string { return fmt.Sprintf("Dir(%q)", d.url.String()) }

// Anchors pointing straight at images are directory noise, not
// sub-directories. Case-sensitive and end-anchored on purpose.
var imageLinkPattern = regexp.MustCompile(`[.](jpg|png|webm)$`)

// ListLinks returns the absolute URL of every anchor on the page,
// annotated with its source element, deduplicated and sorted ascending
// by URL string.
func (d *Dir) ListLinks(ctx context.Context) ([]Annotated, error) {
	return d.listElems(ctx, "a", "href", true)
}

// ListImages is ListLinks over img src attributes, with no extension
// filtering.
func (d *Dir) ListImages(ctx context.Context) ([]Annotated, error) {
	return d.listElems(ctx, "img", "src", false)
}

func (d *Dir) listElems(ctx context.Context, tag, attr string, skipImages bool) ([]Annotated, error) {
	doc, err := d.Doc(ctx)
	if err != nil {
		return nil, err
	}

	base := d.url
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		base = base.Resolve(href)
	}

	seen := make(map[string]bool)
	var urls []Annotated
	doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		val, ok := sel.Attr(attr)
		if !ok {
			return
		}
		if skipImages && imageLinkPattern.MatchString(val) {
			return
		}
		url := base.Resolve(val)
		if seen[url.String()] {
			return
		}
		seen[url.String()] = true
		urls = append(urls, Annotated{URL: url, Node: sel.Get(0)})
	})

	sort.Slice(urls, func(i, j int) bool {
		return urls[i].URL.Compare(urls[j].URL) < 0
	})
	return urls, nil
}

// Ls constructs the directory's children: a Dir per anchor, a File per
// image, directories first. Memoized per URL; a second call returns
// the identical List.
// https://www.halolinux.us/kernel-reference/the-dentry-cache.html
func (d *Dir) Ls(ctx context.Context) (*List, error) {
	key := d.url.String()
	if items, ok := d.fs.listings.Get(key); ok {
		return items, nil
	}

	v, err, _ := d.fs.group.Do("ls:"+key, func() (any, error) {
		if items, ok := d.fs.listings.Get(key); ok {
			return items, nil
		}

		links, err := d.ListLinks(ctx)
		if err != nil {
			return nil, err
		}
		images, err := d.ListImages(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]Entry, 0, len(links)+len(images))
		for _, a := range links {
			entries = append(entries, d.fs.dirAt(a))
		}
		for _, a := range images {
			entries = append(entries, d.fs.fileAt(a))
		}

		items := &List{entries: entries}
		d.fs.listings.Add(key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*List), nil
}

// Prefetch lists the children and pulls every child's bytes through a
// bounded worker pool, paying network latency once, in parallel,
// before sequential processing. A failed child does not abort its
// siblings; its error resurfaces when that child is read.
func (d *Dir) Prefetch(ctx context.Context) (*List, error) {
	items, err := d.Ls(ctx)
	if err != nil {
		return nil, err
	}
	items.Prefetch(ctx)
	return items, nil
}

func prefetch(ctx context.Context, entries []Entry) {
	workers := 2 * runtime.GOMAXPROCS(0)
	jobs := make(chan Entry)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				if _, err := entry.Bytes(ctx); err != nil {
					slog.Warn("prefetch failed", slog.String("url", entry.URL().String()), slog.Any("err", err))
				}
			}
		}()
	}

	for _, entry := range entries {
		jobs <- entry
	}
	close(jobs)
	wg.Wait()
}
