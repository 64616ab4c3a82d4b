package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL:  server.URL,
		version:  "v21.0",
		pageSize: 500,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func TestNewClient(t *testing.T) {
	cfg := config.MetaConfig{
		AccessToken:    "test-token",
		BaseURL:        "https://graph.facebook.com",
		APIVersion:     "v21.0",
		TimeoutSeconds: 30,
		PageSize:       500,
	}

	client := NewClient(cfg)

	assert.NotNil(t, client)
	assert.Equal(t, "https://graph.facebook.com", client.baseURL)
	assert.Equal(t, "v21.0", client.version)
}

func TestFetchInsights(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_101/insights", r.URL.Path)
		assert.Equal(t, "ad", r.URL.Query().Get("level"))
		assert.Equal(t, "1", r.URL.Query().Get("time_increment"))
		assert.Contains(t, r.URL.Query().Get("time_range"), `"since":"2025-01-04"`)

		response := insightsResponse{
			Data: []InsightRow{
				{DateStart: "2025-01-10", AdID: "ad_1", AdsetID: "as_1", Impressions: "1000", Spend: "10.00"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx := context.Background()

	since := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	rows, err := client.FetchInsights(ctx, "101", LevelAd, since, until)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ad_1", rows[0].AdID)
}

func TestFetchInsightsFollowsPaging(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/page2" {
			json.NewEncoder(w).Encode(insightsResponse{
				Data: []InsightRow{{DateStart: "2025-01-10", AdID: "ad_2", AdsetID: "as_1"}},
			})
			return
		}

		json.NewEncoder(w).Encode(insightsResponse{
			Data:   []InsightRow{{DateStart: "2025-01-10", AdID: "ad_1", AdsetID: "as_1"}},
			Paging: Paging{Next: server.URL + "/page2"},
		})
	}))
	defer server.Close()

	client := newTestClient(server)

	rows, err := client.FetchInsights(context.Background(), "act_101", LevelAd,
		time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ad_1", rows[0].AdID)
	assert.Equal(t, "ad_2", rows[1].AdID)
}

func TestFetchInsightsGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.FetchInsights(context.Background(), "101", LevelAd, time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
	assert.Contains(t, err.Error(), "code 190")
}

func TestFetchAdsetBudgets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_101/adsets", r.URL.Path)

		response := adsetsResponse{
			Data: []Adset{
				{ID: "as_1", Name: "Prospecting", DailyBudget: "5000", Status: "ACTIVE"},
				{ID: "as_2", Name: "Retargeting", DailyBudget: "", Status: "ACTIVE"},
				{ID: "as_3", Name: "Broken", DailyBudget: "oops", Status: "ACTIVE"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)

	budgets, err := client.FetchAdsetBudgets(context.Background(), "101")
	require.NoError(t, err)

	// minor units become whole currency; missing/bad budgets are omitted
	assert.Equal(t, map[string]float64{"as_1": 50.0}, budgets)
}

func TestFetchAdCreatives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_101/adcreatives", r.URL.Path)

		response := adCreativesResponse{
			Data: []AdCreative{
				{ID: "cr_1", Name: "Beach video", ObjectType: "VIDEO", Status: "ACTIVE"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)

	creatives, err := client.FetchAdCreatives(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, creatives, 1)
	assert.Equal(t, "cr_1", creatives[0].ID)
}

func TestFetchAds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/act_101/ads", r.URL.Path)
		assert.Equal(t, "id,name,effective_status,creative{id}", r.URL.Query().Get("fields"))

		response := adsResponse{
			Data: []Ad{
				{ID: "ad_1", Name: "Beach video - ugc", EffectiveStatus: "ACTIVE", Creative: &CreativeRef{ID: "cr_1"}},
				{ID: "ad_2", Name: "No creative", EffectiveStatus: "PAUSED"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)

	ads, err := client.FetchAds(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "cr_1", ads[0].Creative.ID)
	assert.Nil(t, ads[1].Creative)
}
