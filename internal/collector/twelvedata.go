package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"XAUCopilot/internal/model"
)

// DefaultTwelveDataBaseURL is the Twelve Data REST endpoint.
const DefaultTwelveDataBaseURL = "https://api.twelvedata.com"

// TwelveDataFetcher implements Fetcher using the Twelve Data time_series API.
type TwelveDataFetcher struct {
	BaseURL  string
	APIKey   string
	Timezone string
	Client   *http.Client
}

// NewTwelveDataFetcher creates a new fetcher with optional proxy support.
// Bars are requested and interpreted in the given IANA time zone.
func NewTwelveDataFetcher(baseURL, apiKey, timezone, proxyURL string) *TwelveDataFetcher {
	if baseURL == "" {
		baseURL = DefaultTwelveDataBaseURL
	}
	if timezone == "" {
		timezone = "UTC"
	}
	return &TwelveDataFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Timezone: timezone,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// tdTimeSeries is the expected JSON shape from the time_series endpoint.
type tdTimeSeries struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

// tdIntervals maps Yahoo-style intervals to Twelve Data names and bar durations.
var tdIntervals = map[string]struct {
	name string
	step time.Duration
}{
	"15m": {"15min", 15 * time.Minute},
	"30m": {"30min", 30 * time.Minute},
	"1h":  {"1h", time.Hour},
	"4h":  {"4h", 4 * time.Hour},
	"1d":  {"1day", 24 * time.Hour},
}

// lookbackSpans maps Yahoo-style ranges to durations.
var lookbackSpans = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"5d":  5 * 24 * time.Hour,
	"1mo": 31 * 24 * time.Hour,
	"3mo": 92 * 24 * time.Hour,
}

// outputSize estimates how many bars of step fit in lookback.
func outputSize(step time.Duration, lookback string) (int, error) {
	span, ok := lookbackSpans[lookback]
	if !ok {
		return 0, fmt.Errorf("unsupported lookback %q", lookback)
	}
	n := int(span / step)
	if n > 5000 {
		n = 5000 // API maximum
	}
	return n, nil
}

func parseField(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// FetchBars queries the time_series endpoint and returns bars oldest first.
func (f *TwelveDataFetcher) FetchBars(ctx context.Context, symbol, interval, lookback string) ([]model.Bar, error) {
	tdInterval, ok := tdIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("twelvedata: unsupported interval %q", interval)
	}
	size, err := outputSize(tdInterval.step, lookback)
	if err != nil {
		return nil, fmt.Errorf("twelvedata: %w", err)
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, fmt.Errorf("twelvedata: load timezone %q: %w", f.Timezone, err)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", tdInterval.name)
	q.Set("outputsize", strconv.Itoa(size))
	q.Set("timezone", f.Timezone)
	q.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/time_series?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var series tdTimeSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if series.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", series.Message)
	}

	bars := make([]model.Bar, 0, len(series.Values))
	for _, v := range series.Values {
		tm, err := time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, loc)
		if err != nil {
			tm, err = time.ParseInLocation("2006-01-02", v.Datetime, loc)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		bars = append(bars, model.Bar{
			Time:   tm,
			Open:   parseField(v.Open),
			High:   parseField(v.High),
			Low:    parseField(v.Low),
			Close:  parseField(v.Close),
			Volume: parseField(v.Volume),
		})
	}
	// The API returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
