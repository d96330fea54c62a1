package calsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type calendarClient struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

func newCalendarClient() (*calendarClient, error) {
	baseURL := strings.TrimSpace(os.Getenv("ACADEMY_CAL_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.academycal.com"
	}
	apiKey := strings.TrimSpace(os.Getenv("ACADEMY_CAL_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("calendar api key is empty")
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("ACADEMY_CAL_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	rateLimitPerMin := int64(30)
	if v := strings.TrimSpace(os.Getenv("ACADEMY_CAL_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &calendarClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

// FetchFeedEvents pulls one feed's items inside [from, to).
func (c *calendarClient) FetchFeedEvents(ctx context.Context, feedId string, from time.Time, to time.Time) ([]FeedItem, error) {
	<-c.limiter

	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	endpoint := c.baseURL + "/feeds/" + url.PathEscape(feedId) + "/events?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed feedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Items != nil {
		return parsed.Items, nil
	}
	return parsed.Data, nil
}
