package linkpreview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adpilot/dashboard/internal/models"
	"go.uber.org/zap"
)

// Preview holds creative suggestions scraped from a landing page.
type Preview struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	SiteName    string    `json:"site_name,omitempty"`
	Headline    string    `json:"suggested_headline"`
	Summary     string    `json:"suggested_description"`
	FetchedAt   time.Time `json:"fetched_at"`
}

var (
	ErrInvalidLink = errors.New("invalid link")
	ErrBlockedHost = errors.New("link points to a private address")
)

// maxBodyBytes caps how much of a page is parsed.
const maxBodyBytes = 1 << 20

type Fetcher struct {
	httpClient *http.Client
	log        *zap.Logger

	allowPrivate bool
}

func NewFetcher(timeoutMS int, log *zap.Logger) *Fetcher {
	f := &Fetcher{log: log}
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: f.checkAddress,
	}
	f.httpClient = &http.Client{
		Timeout: time.Duration(timeoutMS) * time.Millisecond,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
	return f
}

// checkAddress runs after DNS resolution for every connection, redirects
// included, so a hostname cannot be rebound to an internal address.
func (f *Fetcher) checkAddress(network, address string, _ syscall.RawConn) error {
	if f.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}
	return nil
}

var cgnat = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func isPublicIP(ip net.IP) bool {
	return !ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() &&
		!ip.IsMulticast() &&
		!ip.IsUnspecified() &&
		!cgnat.Contains(ip)
}

// Fetch downloads rawURL once and extracts Open Graph data, falling back to
// the document title and meta description.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidLink, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; adpilot-link-preview/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.log.Debug("link preview fetch failed", zap.String("url", rawURL), zap.Error(err))
		if errors.Is(err, ErrBlockedHost) {
			return nil, fmt.Errorf("%w %q", ErrBlockedHost, rawURL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	p := parse(doc, u)
	p.FetchedAt = time.Now()
	return p, nil
}

func parse(doc *goquery.Document, base *url.URL) *Preview {
	p := &Preview{URL: base.String()}

	p.Title = firstNonEmpty(
		metaContent(doc, "property", "og:title"),
		metaContent(doc, "name", "twitter:title"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	p.Description = firstNonEmpty(
		metaContent(doc, "property", "og:description"),
		metaContent(doc, "name", "description"),
	)
	p.SiteName = metaContent(doc, "property", "og:site_name")

	if img := metaContent(doc, "property", "og:image"); img != "" {
		if ref, err := url.Parse(img); err == nil {
			p.ImageURL = base.ResolveReference(ref).String()
		}
	}

	p.Headline = truncate(collapseSpaces(p.Title), models.MaxHeadlineLength)
	p.Summary = truncate(collapseSpaces(p.Description), models.MaxDescriptionLength)
	return p
}

func metaContent(doc *goquery.Document, attr, key string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok && strings.EqualFold(v, key) {
			content = strings.TrimSpace(s.AttrOr("content", ""))
			return content == ""
		}
		return true
	})
	return content
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most limit runes, preferring a word boundary.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := runes[:limit]
	if runes[limit] != ' ' {
		for i := len(cut) - 1; i > limit/2; i-- {
			if cut[i] == ' ' {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRight(string(cut), " ,.;:-")
}
