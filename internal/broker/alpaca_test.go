package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.Handler) (*AlpacaClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewAlpacaClient(AlpacaConfig{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
		DataURL:   srv.URL,
	})
	return client, srv
}

func TestAlpacaCash(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/account" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.Header.Get("APCA-API-KEY-ID") != "key" || r.Header.Get("APCA-API-SECRET-KEY") != "secret" {
			t.Fatal("missing auth headers")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cash": "10000.50", "status": "ACTIVE"}`))
	}))

	cash, err := client.Cash(context.Background())
	if err != nil {
		t.Fatalf("Cash: %v", err)
	}
	if !cash.Equal(decimal.RequireFromString("10000.50")) {
		t.Fatalf("cash = %s, want 10000.50", cash)
	}
}

func TestAlpacaLastPrice(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/stocks/SPY/trades/latest" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": "SPY", "trade": {"p": 512.34, "s": 100}}`))
	}))

	price, err := client.LastPrice(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("LastPrice: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("512.34")) {
		t.Fatalf("price = %s, want 512.34", price)
	}
}

func TestAlpacaNewsPagination(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta1/news" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbols") != "SPY" || q.Get("start") != "2024-02-24" || q.Get("end") != "2024-02-27" {
			t.Fatalf("query = %v", q)
		}

		w.Header().Set("Content-Type", "application/json")
		if q.Get("page_token") == "" {
			w.Write([]byte(`{"news": [{"headline": "first"}], "next_page_token": "tok"}`))
			return
		}
		if q.Get("page_token") != "tok" {
			t.Fatalf("page_token = %q", q.Get("page_token"))
		}
		w.Write([]byte(`{"news": [{"headline": "second"}], "next_page_token": ""}`))
	}))

	start := time.Date(2024, 2, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	items, err := client.News(context.Background(), "SPY", start, end)
	if err != nil {
		t.Fatalf("News: %v", err)
	}

	if len(items) != 2 || items[0].Headline != "first" || items[1].Headline != "second" {
		t.Fatalf("items = %+v", items)
	}
}

func TestAlpacaSubmitBracket(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/orders" {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}

		var body struct {
			Symbol     string `json:"symbol"`
			Qty        string `json:"qty"`
			Side       string `json:"side"`
			Type       string `json:"type"`
			OrderClass string `json:"order_class"`
			TakeProfit struct {
				LimitPrice string `json:"limit_price"`
			} `json:"take_profit"`
			StopLoss struct {
				StopPrice string `json:"stop_price"`
			} `json:"stop_loss"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Symbol != "SPY" || body.Qty != "50" || body.Side != "buy" {
			t.Fatalf("body = %+v", body)
		}
		if body.Type != "market" || body.OrderClass != "bracket" {
			t.Fatalf("body = %+v", body)
		}
		if body.TakeProfit.LimitPrice != "120.00" || body.StopLoss.StopPrice != "95.00" {
			t.Fatalf("bracket legs = %+v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "abc-123", "status": "accepted"}`))
	}))

	id, err := client.SubmitBracket(context.Background(), BracketOrder{
		Symbol:     "SPY",
		Qty:        50,
		Side:       Buy,
		TakeProfit: decimal.RequireFromString("120"),
		StopLoss:   decimal.RequireFromString("95"),
	})
	if err != nil {
		t.Fatalf("SubmitBracket: %v", err)
	}
	if id != "abc-123" {
		t.Fatalf("id = %q", id)
	}
}

func TestAlpacaSubmitBracketRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "insufficient buying power"}`))
	}))

	if _, err := client.SubmitBracket(context.Background(), BracketOrder{
		Symbol: "SPY", Qty: 50, Side: Buy,
		TakeProfit: decimal.RequireFromString("120"),
		StopLoss:   decimal.RequireFromString("95"),
	}); err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestAlpacaCloseAll(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"closed", http.StatusOK, false},
		{"no open position", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/v2/positions/SPY" {
					t.Fatalf("%s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))

			err := client.CloseAll(context.Background(), "SPY")
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("CloseAll: %v", err)
			}
		})
	}
}

func TestAlpacaBaseURLDerivation(t *testing.T) {
	paper := NewAlpacaClient(AlpacaConfig{Paper: true})
	if paper.trading.BaseURL != paperTradingURL {
		t.Fatalf("paper base = %s", paper.trading.BaseURL)
	}

	live := NewAlpacaClient(AlpacaConfig{})
	if live.trading.BaseURL != liveTradingURL {
		t.Fatalf("live base = %s", live.trading.BaseURL)
	}
}
