package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"coin-market-api/src/config"
	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"
	"coin-market-api/src/models"
	"coin-market-api/src/storage"
)

const sampleDoc = `{
  "bitcoin": {
    "id": "bitcoin", "name": "Bitcoin", "symbol": "btc", "market_cap_rank": 1,
    "market_data": {
      "current_price": {"usd": 65000},
      "total_supply": 21000000, "max_supply": 21000000, "circulating_supply": 19700000,
      "ath": {"usd": 73738}, "atl": {"usd": 67.81}
    }
  },
  "ethereum": {
    "id": "ethereum", "name": "Ethereum", "symbol": "eth", "market_cap_rank": 2,
    "market_data": {"current_price": {"usd": 3500.25}}
  },
  "tether": {
    "id": "tether", "name": "Tether", "symbol": "usdt", "market_cap_rank": 3,
    "market_data": {"current_price": {"eur": 0.92}}
  },
  "historical": {
    "bitcoin": {
      "prices": [[1700000000000, 100], [1700086400000, 110]],
      "total_volumes": [[1700000000000, 10], [1700086400000, 20]],
      "market_caps": [[1700000000000, 1000], [1700086400000, 1100]]
    },
    "ethereum": {"prices": [], "total_volumes": [], "market_caps": []},
    "solana": {"prices": [[1700000000000, 50]]}
  }
}`

func newTestService(t *testing.T) *MarketService {
	t.Helper()
	log := logger.NewNop("test")
	store, err := storage.ParseSampleStore([]byte(sampleDoc), log)
	if err != nil {
		t.Fatalf("ParseSampleStore: %v", err)
	}
	svc := NewMarketService(store, config.Defaults(), log)
	svc.Location = time.UTC
	svc.Validator.Now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local) }
	return svc
}

func TestGetPrice(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]float64{
		"bitcoin":  65000,
		"ethereum": 3500.25,
		"tether":   0, // no usd quote
		"nope":     0,
	}
	for coin, want := range cases {
		if got := svc.GetPrice(coin); got != want {
			t.Errorf("GetPrice(%q) = %v, want %v", coin, got, want)
		}
	}
}

func TestListSymbolsKeepsOrderAndSkipsUnknown(t *testing.T) {
	svc := newTestService(t)

	got := svc.ListSymbols([]string{"ethereum", "nope", "bitcoin"})
	want := []models.MSymbolPrice{
		{Symbol: "ethereum", Price: "3500.25"},
		{Symbol: "bitcoin", Price: "65000"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListSymbols() = %+v, want %+v", got, want)
	}

	if got := svc.ListSymbols(nil); got == nil || len(got) != 0 {
		t.Errorf("ListSymbols(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestGetHistorical(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.GetHistorical("bitcoin", "2024-06-01", "2024-06-10", "daily")
	if err != nil {
		t.Fatalf("GetHistorical: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d points, want 2", len(resp.Data))
	}
	if resp.Info.Message != nil {
		t.Errorf("unexpected message %q", *resp.Info.Message)
	}
	if resp.Info.StartDate != "2024-06-01" || resp.Info.EndDate != "2024-06-10" {
		t.Errorf("info = %+v", resp.Info)
	}
	last := resp.Data[1]
	if last.MCoinSummary == nil || last.Symbol != "BTC" || last.Change != 10 {
		t.Errorf("unexpected last point %+v", last)
	}
}

func TestGetHistoricalAdjustedRangeCarriesMessage(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.GetHistorical("bitcoin", "garbage", "2024-06-10", "daily")
	if err != nil {
		t.Fatalf("GetHistorical: %v", err)
	}
	if resp.Info.Message == nil || *resp.Info.Message == "" {
		t.Fatal("expected an adjustment message")
	}
	if resp.Info.StartDate != "2023-06-17" {
		t.Errorf("start = %s, want default start 2023-06-17", resp.Info.StartDate)
	}
}

func TestGetHistoricalLookupErrors(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		coin    string
		cause   error
		message string
	}{
		{"doesnotexist", helpers.ErrCoinNotFound, "No historical data available for doesnotexist"},
		{"solana", helpers.ErrNoCoinMetadata, "No coin information available for solana"},
		{"ethereum", helpers.ErrNoPriceData, "No price data available"},
	}

	for _, tc := range cases {
		t.Run(tc.coin, func(t *testing.T) {
			resp, err := svc.GetHistorical(tc.coin, "2024-06-01", "2024-06-10", "daily")

			var lookupErr *helpers.LookupError
			if !errors.As(err, &lookupErr) {
				t.Fatalf("got %v, want *helpers.LookupError", err)
			}
			if !errors.Is(err, tc.cause) {
				t.Errorf("cause = %v, want %v", lookupErr.Cause, tc.cause)
			}
			if err.Error() != tc.message {
				t.Errorf("message = %q, want %q", err.Error(), tc.message)
			}
			if resp.Data == nil || len(resp.Data) != 0 {
				t.Errorf("data = %#v, want empty", resp.Data)
			}
			if resp.Info.StartDate != "2024-06-01" || resp.Info.EndDate != "2024-06-10" {
				t.Errorf("info dates lost: %+v", resp.Info)
			}
		})
	}
}
