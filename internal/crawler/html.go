package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements never contribute text or links.
var blockElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Template: true,
}

// Page is the useful content of one fetched document.
type Page struct {
	Links []string
	Text  string
}

// ParsePage walks markup once, collecting normalised outbound links resolved
// against base and the visible text.
func ParsePage(base *url.URL, markup string) (Page, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Page{}, fmt.Errorf("parsing html: %w", err)
	}
	var page Page
	var text strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if blockElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.A {
				if link, ok := resolveLink(base, n); ok {
					page.Links = append(page.Links, link)
				}
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	page.Text = strings.Join(strings.Fields(text.String()), " ")
	return page, nil
}

// ExtractLinks returns the http(s) links of markup in document order.
// Duplicates are kept; the crawler's visited set removes them.
func ExtractLinks(base *url.URL, markup string) []string {
	page, err := ParsePage(base, markup)
	if err != nil {
		return nil
	}
	return page.Links
}

// ExtractText returns the visible text of markup with entities decoded and
// whitespace collapsed.
func ExtractText(markup string) string {
	page, err := ParsePage(&url.URL{}, markup)
	if err != nil {
		return ""
	}
	return page.Text
}

func resolveLink(base *url.URL, n *html.Node) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			return "", false
		}
		resolved := Normalize(base.ResolveReference(ref))
		if !strings.HasPrefix(resolved.Scheme, "http") || resolved.Host == "" {
			return "", false
		}
		return resolved.String(), true
	}
	return "", false
}

// Normalize returns a copy of u without its fragment, with a lower-case
// scheme and host, and with "/" as the path of a bare host.
func Normalize(u *url.URL) *url.URL {
	n := *u
	n.Fragment = ""
	n.RawFragment = ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Host != "" && n.Path == "" && n.Opaque == "" {
		n.Path = "/"
		n.RawPath = ""
	}
	return &n
}
