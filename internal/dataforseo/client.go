// Package dataforseo fetches ranked keywords for a domain from the DataForSEO
// Labs API and stores them for the bulk analysis table.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	rankedKeywordsPath = "/v3/dataforseo_labs/google/ranked_keywords/live"

	// DataForSEO reports success inside the body as well as in the HTTP status.
	statusOK = 20000

	defaultLocationCode = 2840 // United States
	defaultLanguageCode = "en"

	// MaxFetchLimit is the largest page the ranked keywords endpoint returns.
	MaxFetchLimit = 1000
)

// RankedKeyword is one keyword the domain ranks for.
type RankedKeyword struct {
	Keyword      string `json:"keyword"`
	Position     int    `json:"position"`
	SearchVolume int64  `json:"searchVolume"`
	URL          string `json:"url"`
}

type rankedKeywordsTask struct {
	Target       string `json:"target"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Limit        int    `json:"limit"`
}

type rankedKeywordsResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			Target string `json:"target"`
			Items  []struct {
				KeywordData struct {
					Keyword     string `json:"keyword"`
					KeywordInfo struct {
						SearchVolume int64 `json:"search_volume"`
					} `json:"keyword_info"`
				} `json:"keyword_data"`
				RankedSerpElement struct {
					SerpItem struct {
						RankAbsolute int    `json:"rank_absolute"`
						URL          string `json:"url"`
					} `json:"serp_item"`
				} `json:"ranked_serp_element"`
			} `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

// permanentError marks failures a retry cannot fix.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

type Client struct {
	baseURL    string
	login      string
	password   string
	httpClient *http.Client
	backoffs   []time.Duration
	maxRetries int
}

func NewClient(baseURL, login, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		login:    login,
		password: password,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoffs:   []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		maxRetries: 3,
	}
}

// WithBackoffs replaces the retry schedule; the number of attempts follows
// its length.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	c.maxRetries = len(backoffs)
	if c.maxRetries == 0 {
		c.maxRetries = 1
	}
	return c
}

// RankedKeywords returns up to limit keywords the domain ranks for.
func (c *Client) RankedKeywords(ctx context.Context, domain string, limit int) ([]RankedKeyword, error) {
	if limit <= 0 || limit > MaxFetchLimit {
		limit = MaxFetchLimit
	}

	var keywords []RankedKeyword
	err := c.RetryWithBackoff(ctx, func() error {
		var err error
		keywords, err = c.rankedKeywords(ctx, domain, limit)
		return err
	}, c.maxRetries)
	return keywords, err
}

func (c *Client) rankedKeywords(ctx context.Context, domain string, limit int) ([]RankedKeyword, error) {
	jsonData, err := json.Marshal([]rankedKeywordsTask{{
		Target:       domain,
		LocationCode: defaultLocationCode,
		LanguageCode: defaultLanguageCode,
		Limit:        limit,
	}})
	if err != nil {
		return nil, &permanentError{fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rankedKeywordsPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ranked keywords: status %d, body: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &permanentError{err}
		}
		return nil, err
	}

	var result rankedKeywordsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.StatusCode != statusOK {
		return nil, fmt.Errorf("ranked keywords: %d %s", result.StatusCode, result.StatusMessage)
	}

	keywords := []RankedKeyword{}
	for _, task := range result.Tasks {
		if task.StatusCode != statusOK {
			return nil, &permanentError{fmt.Errorf("ranked keywords task: %d %s", task.StatusCode, task.StatusMessage)}
		}
		for _, res := range task.Result {
			for _, item := range res.Items {
				keywords = append(keywords, RankedKeyword{
					Keyword:      item.KeywordData.Keyword,
					Position:     item.RankedSerpElement.SerpItem.RankAbsolute,
					SearchVolume: item.KeywordData.KeywordInfo.SearchVolume,
					URL:          item.RankedSerpElement.SerpItem.URL,
				})
			}
		}
	}
	return keywords, nil
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Permanent errors and a done context stop it early.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxRetries-1 {
			select {
			case <-time.After(c.backoffs[i]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
