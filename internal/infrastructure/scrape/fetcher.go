package scrape

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

const (
	defaultMaxBodyBytes = 2 << 20
	maxTextChars        = 20000
)

// Fetcher downloads product pages and reduces them to the fields extraction needs
type Fetcher struct {
	httpClient   *http.Client
	maxBodyBytes int64
	log          *logger.Logger
}

// NewFetcher creates a fetcher with the given request timeout
func NewFetcher(timeout time.Duration, baseLog *logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		httpClient:   &http.Client{Timeout: timeout},
		maxBodyBytes: defaultMaxBodyBytes,
		log:          baseLog.With("client", "scrape"),
	}
}

// Fetch retrieves sourceURL and parses it into a SourcePage
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) (*domain.SourcePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; NestlingsPlanner/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceFetch, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "text/html" && mediaType != "application/xhtml+xml") {
			return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrSourceFetch, ct)
		}
	}

	page, err := ParsePage(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Request.URL.String())
	if err != nil {
		return nil, err
	}

	f.log.Debug("fetched source page", "url", sourceURL, "title", page.Title, "textChars", len(page.Text))
	return page, nil
}

// ParsePage reads an HTML document and collects its title, meta and
// OpenGraph hints, price metadata and visible text.
func ParsePage(r io.Reader, pageURL string) (*domain.SourcePage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrSourceFetch, err)
	}

	page := &domain.SourcePage{URL: pageURL}
	var ogTitle, ogDescription string
	var text strings.Builder

	var walk func(n *html.Node, visible bool)
	walk = func(n *html.Node, visible bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Svg, atom.Template, atom.Iframe:
				return
			case atom.Head:
				visible = false
			case atom.Title:
				if page.Title == "" {
					page.Title = collapse(nodeText(n))
				}
				return
			case atom.Meta:
				readMeta(n, page, &ogTitle, &ogDescription)
			}
			if page.PriceHint == "" {
				if v := attr(n, "itemprop"); v == "price" {
					page.PriceHint = strings.TrimSpace(firstNonEmpty(attr(n, "content"), nodeText(n)))
				}
			}
			if page.Currency == "" && attr(n, "itemprop") == "priceCurrency" {
				page.Currency = strings.TrimSpace(attr(n, "content"))
			}
		}

		if n.Type == html.TextNode && visible && text.Len() < maxTextChars {
			if s := collapse(n.Data); s != "" {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(s)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, visible)
		}
	}
	walk(doc, true)

	if page.Title == "" {
		page.Title = ogTitle
	}
	if page.Description == "" {
		page.Description = ogDescription
	}
	page.ImageURL = resolve(pageURL, page.ImageURL)

	t := text.String()
	if len(t) > maxTextChars {
		t = t[:maxTextChars]
	}
	page.Text = t

	return page, nil
}

func readMeta(n *html.Node, page *domain.SourcePage, ogTitle, ogDescription *string) {
	key := strings.ToLower(firstNonEmpty(attr(n, "property"), attr(n, "name")))
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}

	switch key {
	case "description":
		if page.Description == "" {
			page.Description = content
		}
	case "og:description":
		*ogDescription = content
	case "og:title":
		*ogTitle = content
	case "og:image", "og:image:secure_url", "twitter:image":
		if page.ImageURL == "" {
			page.ImageURL = content
		}
	case "product:price:amount", "og:price:amount":
		if page.PriceHint == "" {
			page.PriceHint = content
		}
	case "product:price:currency", "og:price:currency":
		if page.Currency == "" {
			page.Currency = content
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// resolve turns a relative image reference into an absolute URL
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
