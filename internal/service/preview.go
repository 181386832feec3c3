package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Preview is the Open Graph summary of a target page. Absent tags are
// empty fields, not errors.
type Preview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// FetchError means the target page could not be fetched; handlers map it
// to a bad-gateway response.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service: preview fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("service: preview fetch failed (%d)", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PreviewService scrapes Open Graph metadata from arbitrary pages.
type PreviewService struct {
	http *http.Client
}

// NewPreviewService creates the scraper with a bounded HTTP client.
func NewPreviewService() *PreviewService {
	return &PreviewService{http: &http.Client{Timeout: 10 * time.Second}}
}

// Fetch downloads the page and extracts og:title, og:description and
// og:image from its meta tags (matching either property or name attrs).
func (s *PreviewService) Fetch(ctx context.Context, url string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	og := map[string]string{}
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, ok := sel.Attr("property")
		if !ok {
			prop, ok = sel.Attr("name")
		}
		if !ok {
			return
		}
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		if _, seen := og[prop]; !seen {
			og[prop] = content
		}
	})

	return &Preview{
		Title:       og["og:title"],
		Description: og["og:description"],
		Image:       og["og:image"],
	}, nil
}
