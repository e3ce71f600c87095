package crawler

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// productLikeRe matches subpage URLs that are likely to lead to policy
// documents.
var productLikeRe = regexp.MustCompile(`(?i)policy|wording|product|brochure`)

// Links holds the outcome of scanning one HTML page.
type Links struct {
	PDFs  []string
	Pages []string
}

// ExtractLinks parses HTML and partitions its anchors into direct PDF
// links and ordinary page links. Relative hrefs are resolved against
// base, fragments and javascript pseudo-links are dropped and the
// result is deduplicated in document order.
func ExtractLinks(r io.Reader, base *url.URL) (*Links, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	links := &Links{}
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""

		abs := resolved.String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		if IsPDFLink(abs) {
			links.PDFs = append(links.PDFs, abs)
		} else {
			links.Pages = append(links.Pages, abs)
		}
	})

	return links, nil
}

// IsPDFLink reports whether a URL points directly at a PDF file.
func IsPDFLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// IsProductLike reports whether a page URL looks like it leads to
// policy documents and is worth following from a seed page.
func IsProductLike(rawURL string) bool {
	return productLikeRe.MatchString(rawURL)
}
