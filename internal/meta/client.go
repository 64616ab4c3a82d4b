// Package meta is a minimal Meta Marketing API client covering the edges
// the scoring engine needs: daily insights, ad set budgets, and the
// creative registry. Responses are normalized into domain.MetricSnapshot
// rows; lead counts come from a closed action-type whitelist.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/httpretry"
)

// Client is a Meta Marketing (Graph) API client.
type Client struct {
	baseURL    string
	version    string
	pageSize   int
	httpClient httpretry.HTTPDoer
}

// NewClient creates a Graph API client. The access token is injected as a
// bearer header by an oauth2 transport; retries with backoff handle the
// platform's rate-limit and transient 5xx responses.
func NewClient(cfg config.MetaConfig) *Client {
	base := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.AccessToken},
	))
	base.Timeout = cfg.Timeout()

	return &Client{
		baseURL:    cfg.BaseURL,
		version:    cfg.APIVersion,
		pageSize:   cfg.PageSize,
		httpClient: httpretry.NewRetryClient(base, 3),
	}
}

// doRequest makes a GET request to the Graph API and returns the raw body.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/%s%s", c.baseURL, c.version, path)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	return c.doRequestURL(ctx, fullURL)
}

// doRequestURL fetches an absolute URL (used for paging.next links, which
// arrive fully formed).
func (c *Client) doRequestURL(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope graphErrorResponse
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("graph API error (status %d, code %d): %s",
				resp.StatusCode, envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("graph API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// actPath returns the account edge path, accepting ids with or without the
// "act_" prefix.
func actPath(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return "/" + accountID
	}
	return "/act_" + accountID
}

var insightFields = []string{
	"account_id", "campaign_id", "adset_id", "ad_id", "ad_name",
	"impressions", "reach", "clicks", "spend", "cpm", "ctr", "frequency",
	"actions", "quality_ranking", "engagement_rate_ranking",
	"video_p25_watched_actions", "video_p50_watched_actions",
	"video_p75_watched_actions", "video_p95_watched_actions",
	"video_avg_time_watched_actions",
}

// FetchInsights retrieves daily insight rows for every unit of the account
// at the given level over [since, until], following pagination until the
// platform stops returning a next link.
func (c *Client) FetchInsights(ctx context.Context, accountID string, level Level, since, until time.Time) ([]InsightRow, error) {
	params := url.Values{}
	params.Set("level", string(level))
	params.Set("time_increment", "1")
	params.Set("fields", strings.Join(insightFields, ","))
	params.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		since.Format("2006-01-02"), until.Format("2006-01-02")))
	params.Set("limit", strconv.Itoa(c.pageSize))

	var rows []InsightRow
	body, err := c.doRequest(ctx, actPath(accountID)+"/insights", params)
	for {
		if err != nil {
			return nil, fmt.Errorf("fetching insights: %w", err)
		}

		var page insightsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing insights: %w", err)
		}
		rows = append(rows, page.Data...)

		if page.Paging.Next == "" {
			return rows, nil
		}
		body, err = c.doRequestURL(ctx, page.Paging.Next)
	}
}

// FetchAdsetBudgets retrieves daily budgets per ad set, in whole currency
// units. Ad sets using lifetime or campaign-level budgets report no daily
// budget and are omitted.
func (c *Client) FetchAdsetBudgets(ctx context.Context, accountID string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("fields", "id,name,daily_budget,effective_status")
	params.Set("limit", strconv.Itoa(c.pageSize))

	budgets := make(map[string]float64)
	body, err := c.doRequest(ctx, actPath(accountID)+"/adsets", params)
	for {
		if err != nil {
			return nil, fmt.Errorf("fetching adset budgets: %w", err)
		}

		var page adsetsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing adset budgets: %w", err)
		}
		for _, as := range page.Data {
			if as.DailyBudget == "" {
				continue
			}
			// daily_budget arrives in minor units (cents)
			cents, err := strconv.ParseInt(as.DailyBudget, 10, 64)
			if err != nil {
				continue
			}
			budgets[as.ID] = float64(cents) / 100
		}

		if page.Paging.Next == "" {
			return budgets, nil
		}
		body, err = c.doRequestURL(ctx, page.Paging.Next)
	}
}

// FetchAds lists the account's ads with their creative relation expanded,
// used to map insight rows back to creatives.
func (c *Client) FetchAds(ctx context.Context, accountID string) ([]Ad, error) {
	params := url.Values{}
	params.Set("fields", "id,name,effective_status,creative{id}")
	params.Set("limit", strconv.Itoa(c.pageSize))

	var ads []Ad
	body, err := c.doRequest(ctx, actPath(accountID)+"/ads", params)
	for {
		if err != nil {
			return nil, fmt.Errorf("fetching ads: %w", err)
		}

		var page adsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing ads: %w", err)
		}
		ads = append(ads, page.Data...)

		if page.Paging.Next == "" {
			return ads, nil
		}
		body, err = c.doRequestURL(ctx, page.Paging.Next)
	}
}

// FetchAdCreatives lists the account's creative assets, used to sync the
// local creative registry.
func (c *Client) FetchAdCreatives(ctx context.Context, accountID string) ([]AdCreative, error) {
	params := url.Values{}
	params.Set("fields", "id,name,object_type,status")
	params.Set("limit", strconv.Itoa(c.pageSize))

	var creatives []AdCreative
	body, err := c.doRequest(ctx, actPath(accountID)+"/adcreatives", params)
	for {
		if err != nil {
			return nil, fmt.Errorf("fetching ad creatives: %w", err)
		}

		var page adCreativesResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing ad creatives: %w", err)
		}
		creatives = append(creatives, page.Data...)

		if page.Paging.Next == "" {
			return creatives, nil
		}
		body, err = c.doRequestURL(ctx, page.Paging.Next)
	}
}
