package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"afisha/internal/domain"
)

// timeLayout is the timestamp format the stats service accepts.
const timeLayout = "2006-01-02 15:04:05"

type httpCollector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCollector returns an AnalyticsCollector that calls the stats service
// over HTTP. A nil client falls back to http.DefaultClient.
func NewHTTPCollector(baseURL string, client *http.Client) domain.AnalyticsCollector {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpCollector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (c *httpCollector) QueryHits(ctx context.Context, start, end time.Time, paths []string, unique bool) ([]domain.ViewStat, error) {
	params := url.Values{}
	params.Set("start", start.Format(timeLayout))
	params.Set("end", end.Format(timeLayout))
	params.Set("unique", strconv.FormatBool(unique))
	for _, p := range paths {
		params.Add("uris", p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch stats: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: stats service returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var stats []domain.ViewStat
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	return stats, nil
}
