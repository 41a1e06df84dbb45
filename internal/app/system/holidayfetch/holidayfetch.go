// internal/app/system/holidayfetch/holidayfetch.go
//
// Package holidayfetch pulls Japanese national holidays from the
// holidays-jp public API (https://holidays-jp.github.io).
package holidayfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/store/holidays"
)

// DefaultBaseURL is the public holidays-jp endpoint.
const DefaultBaseURL = "https://holidays-jp.github.io/api/v1"

// nameTranslations maps the Japanese holiday names the API returns to
// their English counterparts. Unlisted names pass through untranslated.
var nameTranslations = map[string]string{
	"元日":      "New Year's Day",
	"成人の日":    "Coming of Age Day",
	"建国記念の日":  "National Foundation Day",
	"天皇誕生日":   "Emperor's Birthday",
	"春分の日":    "Vernal Equinox Day",
	"昭和の日":    "Showa Day",
	"憲法記念日":   "Constitution Memorial Day",
	"みどりの日":   "Greenery Day",
	"こどもの日":   "Children's Day",
	"海の日":     "Marine Day",
	"山の日":     "Mountain Day",
	"敬老の日":    "Respect for the Aged Day",
	"秋分の日":    "Autumnal Equinox Day",
	"スポーツの日":  "Sports Day",
	"体育の日":    "Health and Sports Day",
	"文化の日":    "Culture Day",
	"勤労感謝の日":  "Labor Thanksgiving Day",
	"休日":      "Public Holiday",
	"振替休日":    "Substitute Holiday",
	"国民の休日":   "Citizens' Holiday",
}

// TranslateName returns the English name for a Japanese holiday name.
// Compound names like "休日 こどもの日" translate piecewise.
func TranslateName(name string) string {
	if en, ok := nameTranslations[name]; ok {
		return en
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if en, ok := nameTranslations[p]; ok {
			out = append(out, en)
		} else {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Sink receives fetched holidays; Stores satisfy it.
type Sink interface {
	Upsert(ctx context.Context, h holidays.Holiday) (bool, error)
}

// Fetcher downloads and translates holidays for calendar years.
type Fetcher struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// New creates a Fetcher against the public API. Pass a non-empty
// baseURL to override the endpoint.
func New(baseURL string, logger *zap.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// FetchYear downloads one calendar year of holidays, ordered by date.
func (f *Fetcher) FetchYear(ctx context.Context, year int) ([]holidays.Holiday, error) {
	url := fmt.Sprintf("%s/%d/date.json", f.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays for %d: %w", year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holidays for %d: unexpected status %d", year, resp.StatusCode)
	}

	var byDate map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&byDate); err != nil {
		return nil, fmt.Errorf("decode holidays for %d: %w", year, err)
	}

	out := make([]holidays.Holiday, 0, len(byDate))
	for date, name := range byDate {
		out = append(out, holidays.Holiday{
			Date:   date,
			Name:   name,
			NameEN: TranslateName(name),
			Year:   year,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// LoadStats summarizes one load.
type LoadStats struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// LoadYears fetches each year and upserts the results into the sink.
func (f *Fetcher) LoadYears(ctx context.Context, sink Sink, years []int) (LoadStats, error) {
	var stats LoadStats
	for _, year := range years {
		items, err := f.FetchYear(ctx, year)
		if err != nil {
			return stats, err
		}
		stats.Fetched += len(items)
		for _, h := range items {
			created, err := sink.Upsert(ctx, h)
			if err != nil {
				return stats, fmt.Errorf("store holiday %s: %w", h.Date, err)
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}
		f.log.Info("holidays loaded",
			zap.Int("year", year),
			zap.Int("count", len(items)))
	}
	return stats, nil
}
