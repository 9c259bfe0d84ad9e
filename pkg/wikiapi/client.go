// Package wikiapi provides a rate-limited client for the MediaWiki Action
// API and the Wikimedia pageviews REST API, used to enumerate articles
// embedding a template, retrieve their wikitext, and collect pageview
// metrics.
package wikiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/joho/godotenv"
)

// Default client settings.
const (
	// DefaultAPIBaseURL is the English Wikipedia Action API endpoint.
	DefaultAPIBaseURL = "https://en.wikipedia.org/w/api.php"

	// DefaultPageviewsBaseURL is the per-article monthly pageviews endpoint.
	DefaultPageviewsBaseURL = "https://wikimedia.org/api/rest_v1/metrics/pageviews/per-article/en.wikipedia/all-access/user"

	// DefaultUserAgent identifies the collector per Wikimedia etiquette.
	DefaultUserAgent = "caselink/1.0 (https://github.com/coolbeans/caselink)"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 25 * time.Second

	// DefaultMaxRetries is the retry budget for throttled or transient
	// server errors.
	DefaultMaxRetries = 5

	// pageviewsStart is the first month the pageviews API covers.
	pageviewsStart = "20080101"
)

// Environment variable names for Wikimedia OAuth1 credentials.
const (
	EnvConsumerKey    = "WIKI_OAUTH_CONSUMER_KEY"
	EnvConsumerSecret = "WIKI_OAUTH_CONSUMER_SECRET"
	EnvAccessToken    = "WIKI_OAUTH_ACCESS_TOKEN"
	EnvAccessSecret   = "WIKI_OAUTH_ACCESS_SECRET"
)

// Config holds client configuration.
type Config struct {
	// APIBaseURL is the MediaWiki Action API endpoint.
	APIBaseURL string

	// PageviewsBaseURL is the pageviews REST API endpoint prefix.
	PageviewsBaseURL string

	// UserAgent is sent on every request.
	UserAgent string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxRetries bounds retries on HTTP 429 and 5xx responses.
	MaxRetries int

	// Rate configures the adaptive inter-request limiter.
	Rate RateConfig

	// HTTPClient allows injection of a custom HTTP client (for testing).
	// When set, OAuth signing is skipped and credentials are not required.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:       DefaultAPIBaseURL,
		PageviewsBaseURL: DefaultPageviewsBaseURL,
		UserAgent:        DefaultUserAgent,
		Timeout:          DefaultTimeout,
		MaxRetries:       DefaultMaxRetries,
		Rate:             DefaultRateConfig(),
	}
}

// Credentials holds Wikimedia OAuth1 credentials.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// LoadCredentials reads OAuth credentials from the environment, first
// loading a .env file from the working directory if one exists. All four
// variables are required.
func LoadCredentials() (Credentials, error) {
	// A missing .env file is fine; the variables may be exported directly.
	_ = godotenv.Load()

	credentials := Credentials{
		ConsumerKey:    os.Getenv(EnvConsumerKey),
		ConsumerSecret: os.Getenv(EnvConsumerSecret),
		AccessToken:    os.Getenv(EnvAccessToken),
		AccessSecret:   os.Getenv(EnvAccessSecret),
	}

	var missing []string
	for _, pair := range []struct{ name, value string }{
		{EnvConsumerKey, credentials.ConsumerKey},
		{EnvConsumerSecret, credentials.ConsumerSecret},
		{EnvAccessToken, credentials.AccessToken},
		{EnvAccessSecret, credentials.AccessSecret},
	} {
		if pair.value == "" {
			missing = append(missing, pair.name)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("missing OAuth credentials: set %s (or create a .env file)", strings.Join(missing, ", "))
	}

	return credentials, nil
}

// Client talks to the Wikimedia APIs with OAuth1 signing and adaptive rate
// limiting. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *AdaptiveLimiter
	config     Config
}

// NewClient creates a Client. Unless config.HTTPClient is injected, OAuth1
// credentials are required and every request is signed with them.
func NewClient(config Config, credentials Credentials) (*Client, error) {
	defaults := DefaultConfig()
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaults.APIBaseURL
	}
	if config.PageviewsBaseURL == "" {
		config.PageviewsBaseURL = defaults.PageviewsBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		if credentials.ConsumerKey == "" || credentials.ConsumerSecret == "" ||
			credentials.AccessToken == "" || credentials.AccessSecret == "" {
			return nil, fmt.Errorf("incomplete OAuth credentials")
		}
		oauthConfig := oauth1.NewConfig(credentials.ConsumerKey, credentials.ConsumerSecret)
		token := oauth1.NewToken(credentials.AccessToken, credentials.AccessSecret)
		httpClient = oauthConfig.Client(oauth1.NoContext, token)
		httpClient.Timeout = config.Timeout
	}

	return &Client{
		httpClient: httpClient,
		limiter:    NewAdaptiveLimiter(config.Rate),
		config:     config,
	}, nil
}

// ListEmbedded returns the titles of all mainspace pages embedding the given
// template (e.g. "Template:Infobox US Supreme Court case"), following API
// continuation tokens until exhausted. Titles are returned sorted.
func (client *Client) ListEmbedded(ctx context.Context, template string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"embeddedin"},
		"eititle":     {template},
		"einamespace": {"0"},
		"eilimit":     {"max"},
		"format":      {"json"},
	}

	titleSet := make(map[string]bool)

	for {
		body, err := client.get(ctx, client.config.APIBaseURL, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list pages embedding %s: %w", template, err)
		}

		var response embeddedinResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to decode embeddedin response: %w", err)
		}

		for _, page := range response.Query.EmbeddedIn {
			titleSet[page.Title] = true
		}

		if len(response.Continue) == 0 {
			break
		}
		for key, value := range response.Continue {
			params.Set(key, value)
		}
	}

	titles := make([]string, 0, len(titleSet))
	for title := range titleSet {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

// WikitextBatch retrieves the latest-revision wikitext for up to 50 titles
// in a single request. The result maps title to raw wikitext; titles with no
// retrievable content map to the empty string.
func (client *Client) WikitextBatch(ctx context.Context, titles []string) (map[string]string, error) {
	if len(titles) == 0 {
		return map[string]string{}, nil
	}

	params := url.Values{
		"action":        {"query"},
		"prop":          {"revisions"},
		"rvprop":        {"content"},
		"rvslots":       {"main"},
		"titles":        {strings.Join(titles, "|")},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	body, err := client.get(ctx, client.config.APIBaseURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wikitext batch: %w", err)
	}

	var response revisionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode revisions response: %w", err)
	}

	wikitext := make(map[string]string, len(titles))
	for _, page := range response.Query.Pages {
		content := ""
		if len(page.Revisions) > 0 {
			revision := page.Revisions[0]
			if revision.Slots.Main.Content != "" {
				content = revision.Slots.Main.Content
			} else {
				content = revision.Content
			}
		}
		wikitext[page.Title] = content
	}
	return wikitext, nil
}

// get performs a rate-limited GET with retries on throttled and transient
// server responses. The adaptive delay backs off on HTTP 429 and decays on
// success.
func (client *Client) get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= client.config.MaxRetries; attempt++ {
		if err := client.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		requestURL := baseURL
		if params != nil {
			requestURL = baseURL + "?" + params.Encode()
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		request.Header.Set("User-Agent", client.config.UserAgent)

		response, err := client.httpClient.Do(request)
		if err != nil {
			lastErr = err
			client.limiter.Throttled()
			continue
		}

		body, readErr := io.ReadAll(response.Body)
		response.Body.Close()

		switch {
		case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
			client.limiter.Throttled()
			lastErr = fmt.Errorf("HTTP %d from %s", response.StatusCode, baseURL)
			continue
		case response.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("HTTP %d from %s", response.StatusCode, baseURL)
		case readErr != nil:
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		client.limiter.Success()
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", client.config.MaxRetries+1, lastErr)
}

// embeddedinResponse is the Action API list=embeddedin response shape.
type embeddedinResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		EmbeddedIn []struct {
			Title string `json:"title"`
		} `json:"embeddedin"`
	} `json:"query"`
}

// revisionsResponse is the Action API prop=revisions response shape
// (formatversion=2). Content may be inline or under the main slot depending
// on rvslots.
type revisionsResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Revisions []struct {
				Content string `json:"content"`
				Slots   struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}
