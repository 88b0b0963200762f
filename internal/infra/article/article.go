// Package article turns files and web pages into summarizer articles.
package article

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/dom"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

const (
	defaultMaxBytes  = 5 << 20
	defaultUserAgent = "article-summarizer/1.0"
)

// LoadFile reads a text article. The title is the file name without its extension.
func LoadFile(path string) (summarizer.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return summarizer.Article{}, apperrors.Wrap(apperrors.CodeInvalidInput, "read article file", err)
	}
	base := filepath.Base(path)
	return summarizer.Article{
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
		Text:  string(raw),
	}, nil
}

// Fetcher downloads web pages and extracts the readable article body.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewFetcher builds a fetcher. A nil client gets a 30s timeout client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, maxBytes: defaultMaxBytes, userAgent: defaultUserAgent}
}

// Fetch downloads rawURL and extracts its title and text content.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (summarizer.Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return summarizer.Article{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid article url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return summarizer.Article{}, apperrors.Wrap(apperrors.CodeInvalidInput, "build article request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return summarizer.Article{}, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return summarizer.Article{}, fmt.Errorf("fetch article: unexpected status %d", resp.StatusCode)
	}
	return Extract(io.LimitReader(resp.Body, f.maxBytes), parsed)
}

// blockTags start a new line in the extracted text.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// Extract runs readability over an HTML document and keeps one paragraph per block element.
func Extract(r io.Reader, pageURL *url.URL) (summarizer.Article, error) {
	doc, err := readability.FromReader(r, pageURL)
	if err != nil {
		return summarizer.Article{}, apperrors.Wrap(apperrors.CodeInvalidInput, "extract article", err)
	}
	text := strings.Join(blockLines(doc.Node), "\n")
	if text == "" {
		text = normalizeText(doc.TextContent)
	}
	return summarizer.Article{
		Title: strings.TrimSpace(doc.Title),
		Text:  text,
	}, nil
}

// blockLines flattens the content tree into lines. Inline text is gathered until the next
// block boundary, so nested blocks and loose text between them each get their own line.
func blockLines(root *html.Node) []string {
	if root == nil {
		return nil
	}
	var (
		lines []string
		buf   strings.Builder
	)
	flush := func() {
		if line := strings.Join(strings.Fields(buf.String()), " "); line != "" {
			lines = append(lines, line)
		}
		buf.Reset()
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}
		tag := dom.TagName(n)
		if tag == "br" {
			buf.WriteString(" ")
			return
		}
		block := blockTags[tag]
		if block {
			flush()
		}
		for _, child := range dom.ChildNodes(n) {
			walk(child)
		}
		if block {
			flush()
		}
	}
	walk(root)
	flush()
	return lines
}

// normalizeText keeps one paragraph per line and drops blank runs.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
