// Package altair provides a Go client for the altair-server HTTP API.
package altair

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to an altair-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new altair API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Strategy describes one strategy profile.
type Strategy struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Rule          string  `json:"rule"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
	FastPeriod    int     `json:"fast_period"`
	SlowPeriod    int     `json:"slow_period"`
	RSIPeriod     int     `json:"rsi_period"`
	Default       bool    `json:"default"`
}

// Trade is one completed trade in a report.
type Trade struct {
	Symbol         string    `json:"Symbol"`
	EntryTimestamp time.Time `json:"EntryTimestamp"`
	ExitTimestamp  time.Time `json:"ExitTimestamp"`
	EntryPrice     float64   `json:"EntryPrice"`
	ExitPrice      float64   `json:"ExitPrice"`
	Quantity       int64     `json:"Quantity"`
	PnL            float64   `json:"PnL"`
	ReturnPct      float64   `json:"ReturnPct"`
	ExitReason     string    `json:"ExitReason"`
}

// EquityPoint is one point on a report's equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"Timestamp"`
	Value     float64   `json:"Value"`
}

// Report is a backtest report. List endpoints omit Trades and EquityCurve.
type Report struct {
	ID             string        `json:"ID"`
	Symbol         string        `json:"Symbol"`
	Strategy       string        `json:"Strategy"`
	Start          time.Time     `json:"Start"`
	End            time.Time     `json:"End"`
	CreatedAt      time.Time     `json:"CreatedAt"`
	InitialCapital float64       `json:"InitialCapital"`
	FinalCapital   float64       `json:"FinalCapital"`
	TotalReturn    float64       `json:"TotalReturn"`
	TotalReturnPct float64       `json:"TotalReturnPct"`
	WinRate        float64       `json:"WinRate"`
	AvgReturnPct   float64       `json:"AvgReturnPct"`
	MaxDrawdownPct float64       `json:"MaxDrawdownPct"`
	Trades         []Trade       `json:"Trades"`
	EquityCurve    []EquityPoint `json:"EquityCurve"`
}

// RunRequest asks the server to execute one backtest. Omitted dates leave
// that side of the range unbounded.
type RunRequest struct {
	Symbol         string  `json:"symbol"`
	Start          string  `json:"start,omitempty"` // YYYY-MM-DD
	End            string  `json:"end,omitempty"`   // YYYY-MM-DD
	Strategy       string  `json:"strategy,omitempty"`
	InitialCapital float64 `json:"initial_capital,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("altair API: %d %s", e.StatusCode, e.Message)
}

// ListStrategies retrieves all strategy profiles.
func (c *Client) ListStrategies(ctx context.Context) ([]Strategy, error) {
	var out []Strategy
	err := c.do(ctx, http.MethodGet, "/api/strategies", nil, &out)
	return out, err
}

// ListReports retrieves report summaries, newest first. An empty symbol
// matches all symbols; limit <= 0 uses the server default.
func (c *Client) ListReports(ctx context.Context, symbol string, limit int) ([]Report, error) {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/reports"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Report
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// GetReport retrieves a full report by ID.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunBacktest executes a backtest on the server and returns the full report.
func (c *Client) RunBacktest(ctx context.Context, req RunRequest) (*Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodPost, "/api/backtests", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
