package wikiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ViewCounts aggregates an article's monthly pageviews.
type ViewCounts struct {
	// AllTime is the sum over every available month.
	AllTime int64 `json:"all_time"`

	// Last12 is the sum over the most recent 12 months.
	Last12 int64 `json:"last_12"`

	// Last6 is the sum over the most recent 6 months.
	Last6 int64 `json:"last_6"`

	// Last1 is the most recent month's count.
	Last1 int64 `json:"last_1"`
}

// pageviewsResponse is the pageviews REST API response shape.
type pageviewsResponse struct {
	Items []struct {
		Views int64 `json:"views"`
	} `json:"items"`
}

// Pageviews retrieves monthly pageview counts for an article from the first
// covered month through today and aggregates them. Errors are returned for
// the caller to decide on; collection treats any failure as zero counts
// rather than aborting.
func (client *Client) Pageviews(ctx context.Context, title string) (ViewCounts, error) {
	article := strings.ReplaceAll(title, " ", "_")
	end := time.Now().Format("20060102")

	requestURL := fmt.Sprintf("%s/%s/monthly/%s/%s",
		client.config.PageviewsBaseURL, url.PathEscape(article), pageviewsStart, end)

	body, err := client.get(ctx, requestURL, nil)
	if err != nil {
		return ViewCounts{}, fmt.Errorf("failed to fetch pageviews for %s: %w", title, err)
	}

	var response pageviewsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ViewCounts{}, fmt.Errorf("failed to decode pageviews for %s: %w", title, err)
	}

	monthly := make([]int64, len(response.Items))
	for itemIndex, item := range response.Items {
		monthly[itemIndex] = item.Views
	}
	return aggregateViews(monthly), nil
}

// aggregateViews computes the all-time, trailing-12, trailing-6, and latest
// month sums over a chronological monthly series.
func aggregateViews(monthly []int64) ViewCounts {
	var counts ViewCounts
	for _, views := range monthly {
		counts.AllTime += views
	}
	counts.Last12 = sumTail(monthly, 12)
	counts.Last6 = sumTail(monthly, 6)
	if len(monthly) > 0 {
		counts.Last1 = monthly[len(monthly)-1]
	}
	return counts
}

// sumTail sums the last n elements, or all of them when fewer exist.
func sumTail(monthly []int64, n int) int64 {
	start := 0
	if len(monthly) > n {
		start = len(monthly) - n
	}
	var sum int64
	for _, views := range monthly[start:] {
		sum += views
	}
	return sum
}
