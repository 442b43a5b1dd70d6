package scraper

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Descriptor is one child entry extracted from a hierarchy page: a title
// on the index page, a chapter on a title page, or a section on a chapter
// page.
type Descriptor struct {
	// Number is the identifier from the link's cite= parameter.
	Number string

	// Name is the link text, whitespace-collapsed.
	Name string

	// URL is the absolute page URL, resolved against the page the link
	// was found on.
	URL string
}

// Parser extracts child descriptors from one hierarchy page.
//
// Design decision: We parse with golang.org/x/net/html rather than regex
// over the raw page because:
//  1. It correctly handles the malformed HTML the site occasionally serves
//  2. Link text extraction needs the DOM, not just the href
//  3. Relative hrefs must be resolved against the page URL
//
// The identifier itself still comes from the cite= query parameter, which
// is the site's stable structural marker for hierarchy links.
type Parser struct {
	// pageURL is the URL of the page being parsed, used for resolving
	// relative hrefs.
	pageURL *url.URL
}

// NewParser creates a parser for the page at pageURL.
func NewParser(pageURL string) (*Parser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Parser{pageURL: u}, nil
}

// Identifier patterns per hierarchy level. Patterns are anchored so a
// deeper identifier never matches a shallower level (cite=1-04-010 is a
// section, not a chapter of title 1).
var titleCitePattern = regexp.MustCompile(`^\d+[A-Za-z]?$`)

// ParseTitles extracts the title descriptors from the corpus index page,
// in document order. Duplicate cite values keep the first occurrence, so
// navigation links repeated in page footers cannot break the uniqueness
// invariant of the registry.
func (p *Parser) ParseTitles(content io.Reader) ([]Descriptor, error) {
	return p.parseLevel(content, titleCitePattern)
}

// ParseChapters extracts the chapter descriptors of the given title from
// a title page, in document order.
func (p *Parser) ParseChapters(content io.Reader, titleNumber string) ([]Descriptor, error) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(titleNumber) + `-\d+[A-Za-z]?$`)
	return p.parseLevel(content, pattern)
}

// ParseSections extracts the section descriptors of the given chapter from
// a chapter page, in document order.
func (p *Parser) ParseSections(content io.Reader, chapterNumber string) ([]Descriptor, error) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(chapterNumber) + `-\d+[A-Za-z]?$`)
	return p.parseLevel(content, pattern)
}

// parseLevel walks the DOM and collects anchors whose cite= parameter
// matches the level pattern.
func (p *Parser) parseLevel(content io.Reader, pattern *regexp.Regexp) ([]Descriptor, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if d, ok := p.descriptorFromAnchor(n, pattern); ok && !seen[d.Number] {
				seen[d.Number] = true
				descriptors = append(descriptors, d)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return descriptors, nil
}

// descriptorFromAnchor converts one anchor element into a Descriptor when
// its href carries a cite= parameter matching the pattern.
func (p *Parser) descriptorFromAnchor(n *html.Node, pattern *regexp.Regexp) (Descriptor, bool) {
	href := getAttr(n, "href")
	if href == "" {
		return Descriptor{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return Descriptor{}, false
	}
	resolved := p.pageURL.ResolveReference(ref)

	cite := resolved.Query().Get("cite")
	if cite == "" || !pattern.MatchString(cite) {
		return Descriptor{}, false
	}

	return Descriptor{
		Number: cite,
		Name:   nodeText(n),
		URL:    resolved.String(),
	}, true
}

// getAttr returns the value of the named attribute, or empty string.
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// nodeText returns the concatenated text content of a node with
// whitespace collapsed, matching how browsers render link text.
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
	return strings.Join(strings.Fields(b.String()), " ")
}

// DispositionURL derives the disposition variant of a title page URL by
// merging the dispo=true query flag onto the canonical URL. The derivation
// is deterministic string manipulation; the page itself is only fetched
// during content download, never during the metadata crawl.
func DispositionURL(canonical string) string {
	if strings.Contains(canonical, "?") {
		return canonical + "&dispo=true"
	}
	return canonical + "?dispo=true"
}
