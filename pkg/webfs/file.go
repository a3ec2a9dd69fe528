package webfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// File is a leaf resource. It has no children.
type File struct {
	Page
}

func (f *File) IsDir() bool { return false }

func (f *File) String() string { return fmt.Sprintf("File(%q)", f.url.String()) }

// Cat returns the raw file content.
func (f *File) Cat(ctx context.Context) ([]byte, error) {
	return f.Bytes(ctx)
}

// PlainText extracts the visible text of an HTML file, whitespace
// collapsed, with script/style/noscript/iframe/svg subtrees skipped.
func (f *File) PlainText(ctx context.Context) (string, error) {
	doc, err := f.Doc(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range doc.Selection.Nodes {
		collectText(n, &sb)
	}

	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg":
			return
		}
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// Extractor turns binary content (images, PDFs) into text. OCR and PDF
// extraction live outside this module; callers supply the service.
type Extractor interface {
	ToText(r io.Reader) (string, error)
}

// ExtractWith runs the file's content through an external extractor.
func (f *File) ExtractWith(ctx context.Context, e Extractor) (string, error) {
	blob, err := f.Cat(ctx)
	if err != nil {
		return "", err
	}
	return e.ToText(bytes.NewReader(blob))
}
