package regulation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/resilience"
)

// ECFRSource scrapes regulation sections from an eCFR rendered page.
type ECFRSource struct {
	URL    string
	Client *http.Client
	Policy resilience.Policy
}

// NewECFRSource creates a source for the given eCFR renderer URL.
func NewECFRSource(url string, policy resilience.Policy) *ECFRSource {
	return &ECFRSource{URL: url, Client: &http.Client{}, Policy: policy}
}

// Fetch downloads and parses the page.
func (s *ECFRSource) Fetch(ctx context.Context) ([]Record, error) {
	var records []Record
	err := resilience.Do(ctx, s.Policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", s.URL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
			return &resilience.StatusError{Service: "ecfr", StatusCode: resp.StatusCode, Body: string(body)}
		}

		records, err = ParseECFR(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseECFR extracts one record per div.section. The h4 heading holds
// "§ <id> <title>", nested divs hold the content and the .citation element
// ends with the amendment date. Sections without a usable heading are skipped.
func ParseECFR(r io.Reader) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing eCFR html: %w", err)
	}

	log := logger.Component("ecfr")
	var records []Record
	doc.Find("div.section").Each(func(i int, sec *goquery.Selection) {
		heading := strings.Fields(strings.TrimSpace(sec.Find("h4").First().Text()))
		if len(heading) < 2 {
			log.Warn().Int("section", i).Msg("skipping section without id heading")
			return
		}

		var parts []string
		sec.Find("div").Each(func(_ int, d *goquery.Selection) {
			parts = append(parts, strings.TrimSpace(d.Text()))
		})

		date := UnknownDate
		if cit := sec.Find(".citation").First(); cit.Length() > 0 {
			date = citationDate(strings.TrimSpace(cit.Text()))
		}

		records = append(records, Record{
			ID:       heading[1],
			Title:    strings.Join(heading[2:], " "),
			Content:  strings.Join(parts, "\n"),
			Category: CategoryRegulation,
			Date:     date,
		})
	})
	return records, nil
}
