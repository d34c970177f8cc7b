package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	liveTradingURL  = "https://api.alpaca.markets"
	paperTradingURL = "https://paper-api.alpaca.markets"
	marketDataURL   = "https://data.alpaca.markets"
)

// AlpacaConfig configures the Alpaca REST client.
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string // trading API; derived from Paper when empty
	DataURL   string // market data API; defaults to data.alpaca.markets
	Paper     bool
}

// AlpacaClient implements Account, NewsProvider and OrderPlacer against the
// Alpaca trading and market-data APIs.
type AlpacaClient struct {
	trading *resty.Client
	data    *resty.Client
}

// NewAlpacaClient creates a client for the configured environment.
func NewAlpacaClient(cfg AlpacaConfig) *AlpacaClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = liveTradingURL
		if cfg.Paper {
			baseURL = paperTradingURL
		}
	}
	dataURL := cfg.DataURL
	if dataURL == "" {
		dataURL = marketDataURL
	}

	newClient := func(base string) *resty.Client {
		c := resty.New()
		c.SetBaseURL(base)
		c.SetTimeout(30 * time.Second)
		c.SetRetryCount(3)
		c.SetHeader("APCA-API-KEY-ID", cfg.APIKey)
		c.SetHeader("APCA-API-SECRET-KEY", cfg.APISecret)
		return c
	}

	return &AlpacaClient{
		trading: newClient(baseURL),
		data:    newClient(dataURL),
	}
}

// Cash implements Account.
func (a *AlpacaClient) Cash(ctx context.Context) (decimal.Decimal, error) {
	var account struct {
		Cash decimal.Decimal `json:"cash"`
	}
	resp, err := a.trading.R().
		SetContext(ctx).
		SetResult(&account).
		Get("/v2/account")
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch account: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("account API error %d: %s", resp.StatusCode(), resp.String())
	}
	return account.Cash, nil
}

// LastPrice implements Account using the latest trade endpoint.
func (a *AlpacaClient) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var result struct {
		Trade struct {
			Price decimal.Decimal `json:"p"`
		} `json:"trade"`
	}
	resp, err := a.data.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/v2/stocks/%s/trades/latest", symbol))
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch last trade for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("latest trade API error %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Trade.Price, nil
}

// News implements NewsProvider. Pages through /v1beta1/news for the
// inclusive calendar-date range.
func (a *AlpacaClient) News(ctx context.Context, symbol string, start, end time.Time) ([]NewsItem, error) {
	var items []NewsItem
	pageToken := ""

	for {
		var page struct {
			News          []NewsItem `json:"news"`
			NextPageToken string     `json:"next_page_token"`
		}
		req := a.data.R().
			SetContext(ctx).
			SetResult(&page).
			SetQueryParams(map[string]string{
				"symbols": symbol,
				"start":   start.Format("2006-01-02"),
				"end":     end.Format("2006-01-02"),
				"limit":   "50",
			})
		if pageToken != "" {
			req.SetQueryParam("page_token", pageToken)
		}

		resp, err := req.Get("/v1beta1/news")
		if err != nil {
			return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("news API error %d: %s", resp.StatusCode(), resp.String())
		}

		items = append(items, page.News...)
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// SubmitBracket implements OrderPlacer. The entry is a market order; the
// exits are the bracket legs, good till cancelled.
func (a *AlpacaClient) SubmitBracket(ctx context.Context, order BracketOrder) (string, error) {
	body := map[string]any{
		"symbol":        order.Symbol,
		"qty":           fmt.Sprintf("%d", order.Qty),
		"side":          string(order.Side),
		"type":          "market",
		"time_in_force": "gtc",
		"order_class":   "bracket",
		"take_profit":   map[string]string{"limit_price": order.TakeProfit.StringFixed(2)},
		"stop_loss":     map[string]string{"stop_price": order.StopLoss.StringFixed(2)},
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := a.trading.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		Post("/v2/orders")
	if err != nil {
		return "", fmt.Errorf("submit %s order for %s: %w", order.Side, order.Symbol, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("order API error %d: %s", resp.StatusCode(), resp.String())
	}
	return created.ID, nil
}

// CloseAll implements OrderPlacer.
func (a *AlpacaClient) CloseAll(ctx context.Context, symbol string) error {
	resp, err := a.trading.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/v2/positions/%s", symbol))
	if err != nil {
		return fmt.Errorf("close positions for %s: %w", symbol, err)
	}
	// 404 means no open position, which is a clean no-op for liquidation.
	if resp.StatusCode() != 200 && resp.StatusCode() != 207 && resp.StatusCode() != 404 {
		return fmt.Errorf("close positions API error %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
