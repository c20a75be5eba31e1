package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"
)

func loadTestStore(t *testing.T) *SampleStore {
	t.Helper()
	store, err := NewSampleStore(filepath.Join("testdata", "sample.json"), logger.NewNop("test"))
	if err != nil {
		t.Fatalf("NewSampleStore: %v", err)
	}
	return store
}

func TestSampleStoreLoadsCoinsAndHistory(t *testing.T) {
	store := loadTestStore(t)

	want := []string{"bitcoin", "dogecoin", "ethereum"}
	if got := store.CoinIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("CoinIDs() = %v, want %v (malformed records are skipped)", got, want)
	}

	btc, ok := store.Coin("bitcoin")
	if !ok {
		t.Fatal("bitcoin missing")
	}
	if btc.MarketData.CurrentPrice["usd"] != 65000.5 || btc.Symbol != "btc" {
		t.Errorf("unexpected bitcoin record: %+v", btc)
	}

	eth, _ := store.Coin("ethereum")
	if eth.MarketData.MaxSupply != nil {
		t.Errorf("null max_supply decoded as %v", *eth.MarketData.MaxSupply)
	}

	series, ok := store.Historical("bitcoin")
	if !ok || len(series.Prices) != 2 || series.MarketCaps[1].Value() != 1100 {
		t.Errorf("unexpected bitcoin series: %+v", series)
	}
	if _, ok := store.Historical("dogecoin"); ok {
		t.Error("dogecoin has no history")
	}
}

func TestSampleStoreLastTimestamp(t *testing.T) {
	store := loadTestStore(t)

	if ts, ok := store.LastTimestamp("bitcoin"); !ok || ts != 1700086400000 {
		t.Errorf("LastTimestamp(bitcoin) = %d, %v", ts, ok)
	}
	if _, ok := store.LastTimestamp("ethereum"); ok {
		t.Error("empty series must report no timestamp")
	}
	if _, ok := store.LastTimestamp("nope"); ok {
		t.Error("unknown coin must report no timestamp")
	}
}

func TestSampleStoreErrors(t *testing.T) {
	_, err := NewSampleStore(filepath.Join("testdata", "missing.json"), logger.NewNop("test"))
	var dataErr *helpers.DataError
	if !errors.As(err, &dataErr) {
		t.Errorf("missing file: got %v, want *helpers.DataError", err)
	}

	_, err = ParseSampleStore([]byte(`[1, 2, 3]`), logger.NewNop("test"))
	if !errors.As(err, &dataErr) {
		t.Errorf("non-object document: got %v, want *helpers.DataError", err)
	}

	_, err = ParseSampleStore([]byte(`{"historical": ["bitcoin"]}`), logger.NewNop("test"))
	if !errors.As(err, &dataErr) {
		t.Errorf("non-object history: got %v, want *helpers.DataError", err)
	}
}

func TestSampleStoreSkipsMalformedSeries(t *testing.T) {
	doc := `{
  "bitcoin": {"id": "bitcoin", "name": "Bitcoin", "symbol": "btc"},
  "historical": {
    "bitcoin": {"prices": [[1700000000000, 100]]},
    "ethereum": {"prices": "not a series"}
  }
}`
	store, err := ParseSampleStore([]byte(doc), logger.NewNop("test"))
	if err != nil {
		t.Fatalf("one broken series must not fail the load: %v", err)
	}
	if _, ok := store.Historical("ethereum"); ok {
		t.Error("malformed ethereum series was kept")
	}
	if ts, ok := store.LastTimestamp("bitcoin"); !ok || ts != 1700000000000 {
		t.Errorf("bitcoin series lost: %d, %v", ts, ok)
	}
}
