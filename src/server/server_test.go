package server

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coin-market-api/src/config"
	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"
	"coin-market-api/src/metrics"
	"coin-market-api/src/models"
	"coin-market-api/src/realtime"
	"coin-market-api/src/service"
	"coin-market-api/src/storage"

	"github.com/gorilla/websocket"
)

const testSample = `{
  "bitcoin": {
    "id": "bitcoin", "name": "Bitcoin", "symbol": "btc", "market_cap_rank": 1,
    "market_data": {"current_price": {"usd": 65000}, "max_supply": 21000000}
  },
  "ethereum": {
    "id": "ethereum", "name": "Ethereum", "symbol": "eth", "market_cap_rank": 2,
    "market_data": {"current_price": {"usd": 3500.5}}
  },
  "historical": {
    "bitcoin": {
      "prices": [[1700000000000, 100], [1700086400000, 110]],
      "total_volumes": [[1700000000000, 10], [1700086400000, 20]],
      "market_caps": [[1700000000000, 1000], [1700086400000, 1100]]
    }
  }
}`

func newTestServer(t *testing.T) (*APIServer, *httptest.Server) {
	t.Helper()
	log := logger.NewNop("test")

	cfg := config.Defaults()
	cfg.Market.DefaultSymbols = []string{"bitcoin", "nope", "ethereum"}
	cfg.Realtime.DefaultPushEnabled = false

	store, err := storage.ParseSampleStore([]byte(testSample), log)
	if err != nil {
		t.Fatalf("ParseSampleStore: %v", err)
	}
	m := metrics.NewMetrics()
	sim := realtime.NewSimulator(cfg.Realtime.SeedPrices, 1700086400000, time.Second, 0.5, rand.New(rand.NewPCG(3, 4)))
	feed := realtime.NewBroadcaster(cfg, realtime.NewRegistry(), sim, m, log)

	s := NewAPIServer(cfg, service.NewMarketService(store, cfg, log), feed, m, log)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		ts.Close()
	})
	return s, ts
}

func getJSON(t *testing.T, url string, into interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestRootAndHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var root map[string]string
	if code := getJSON(t, ts.URL+"/api/", &root); code != http.StatusOK || root["message"] == "" {
		t.Errorf("root = %d %v", code, root)
	}

	var health map[string]string
	if code := getJSON(t, ts.URL+"/api/health", &health); code != http.StatusOK || health["status"] != "healthy" {
		t.Errorf("health = %d %v", code, health)
	}
}

func TestSymbols(t *testing.T) {
	_, ts := newTestServer(t)

	var symbols []models.MSymbolPrice
	if code := getJSON(t, ts.URL+"/api/symbols", &symbols); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	want := []models.MSymbolPrice{{Symbol: "bitcoin", Price: "65000"}, {Symbol: "ethereum", Price: "3500.5"}}
	if len(symbols) != len(want) || symbols[0] != want[0] || symbols[1] != want[1] {
		t.Errorf("symbols = %+v, want %+v", symbols, want)
	}
}

func TestPrice(t *testing.T) {
	_, ts := newTestServer(t)

	var body struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	getJSON(t, ts.URL+"/api/price/bitcoin", &body)
	if body.Symbol != "bitcoin" || body.Price != 65000 {
		t.Errorf("price = %+v", body)
	}

	getJSON(t, ts.URL+"/api/price/nope", &body)
	if body.Symbol != "nope" || body.Price != 0 {
		t.Errorf("unknown coin price = %+v", body)
	}
}

func TestKlines(t *testing.T) {
	_, ts := newTestServer(t)

	var resp models.MKlineResponse
	code := getJSON(t, ts.URL+"/api/klines?symbol=bitcoin&start_date=2024-01-01&end_date=2024-01-31", &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(resp.Data) != 2 || resp.Data[1].Change != 10 || resp.Data[1].ChangePercent != 10 {
		t.Errorf("data = %+v", resp.Data)
	}
	if resp.Data[1].MCoinSummary == nil || resp.Data[1].Symbol != "BTC" {
		t.Error("last point lacks the metadata block")
	}
	if resp.Info.StartDate != "2024-01-01" || resp.Info.Message != nil {
		t.Errorf("info = %+v", resp.Info)
	}
}

func TestKlinesInvalidDatesAreRecovered(t *testing.T) {
	_, ts := newTestServer(t)

	var resp models.MKlineResponse
	code := getJSON(t, ts.URL+"/api/klines?symbol=bitcoin&start_date=yesterday&end_date=2024-01-31", &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Info.Message == nil || !strings.Contains(*resp.Info.Message, "Invalid date format") {
		t.Errorf("info = %+v", resp.Info)
	}
}

func TestKlinesUnknownCoin(t *testing.T) {
	_, ts := newTestServer(t)

	var resp models.MKlineErrorResponse
	code := getJSON(t, ts.URL+"/api/klines?symbol=doesnotexist", &resp)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("data = %#v, want []", resp.Data)
	}
	if resp.Info.Error == "" || resp.Info.StartDate == "" || resp.Info.EndDate == "" {
		t.Errorf("info = %+v", resp.Info)
	}
}

func TestSwaggerAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)

	var doc map[string]interface{}
	if code := getJSON(t, ts.URL+"/static/swagger.json", &doc); code != http.StatusOK || doc["openapi"] == nil {
		t.Errorf("swagger = %d", code)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "coinmarket_http_requests_total") {
		t.Error("request counter missing from /metrics")
	}
}

func TestCORSReflectsOrigin(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// -----------------------------------------------------------------------------
// WebSocket
// -----------------------------------------------------------------------------

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.MEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var evt models.MEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return evt
}

func TestWebSocketSubscribeReceivesPriceUpdates(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	connected := readEvent(t, conn)
	if connected.Event != models.EventConnected {
		t.Fatalf("first event = %s, want %s", connected.Event, models.EventConnected)
	}
	var hello struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(connected.Data, &hello); err != nil || hello.Sid == "" {
		t.Fatalf("connected payload = %s", connected.Data)
	}
	if s.ConnectionCount() != 1 || !s.Feed.PollerRunning() {
		t.Fatal("connection not registered with the feed")
	}

	if err := conn.WriteJSON(map[string]interface{}{"event": "subscribe", "data": []string{"bitcoin"}}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Event != models.EventPriceUpdate {
		t.Fatalf("event = %s, want %s", evt.Event, models.EventPriceUpdate)
	}
	var update models.MPriceUpdate
	if err := json.Unmarshal(evt.Data, &update); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if update.Symbol != "bitcoin" || update.Price <= 0 || update.Timestamp <= 1700086400000 {
		t.Errorf("update = %+v", update)
	}
	if subs, _ := s.Feed.Registry.Subscriptions(hello.Sid); len(subs) != 1 || subs[0] != "bitcoin" {
		t.Errorf("registry subscriptions = %v", subs)
	}
}

func TestWebSocketMalformedMessage(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)
	readEvent(t, conn) // connected

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if evt := readEvent(t, conn); evt.Event != models.EventError {
		t.Fatalf("event = %s, want %s", evt.Event, models.EventError)
	}

	// The connection survives a bad message
	if err := conn.WriteJSON(map[string]string{"event": "subscribe", "data": "ethereum"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	if evt := readEvent(t, conn); evt.Event != models.EventPriceUpdate {
		t.Fatalf("event = %s, want %s", evt.Event, models.EventPriceUpdate)
	}
}

func TestParseCoinIDs(t *testing.T) {
	cases := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{`"bitcoin"`, []string{"bitcoin"}, false},
		{`["bitcoin","ethereum"]`, []string{"bitcoin", "ethereum"}, false},
		{`null`, []string{}, false},
		{``, []string{}, false},
		{`42`, nil, true},
	}
	for _, tc := range cases {
		got, err := parseCoinIDs(json.RawMessage(tc.in))
		if (err != nil) != tc.wantErr {
			t.Errorf("parseCoinIDs(%s) err = %v", tc.in, err)
			continue
		}
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Errorf("parseCoinIDs(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestAddClientAfterStopIsRefused(t *testing.T) {
	s, _ := newTestServer(t)
	s.Stop()

	client := &Client{id: "late", hub: s, send: make(chan interface{}, 1), ready: make(chan struct{})}
	if s.addClient(client) {
		t.Fatal("client registered after Stop")
	}
	if s.ConnectionCount() != 0 || len(client.send) != 0 {
		t.Error("refused client left state behind")
	}
}

func TestStopBeforeStart(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start after Stop = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept serving after Stop")
	}
	if s.Feed.PollerRunning() {
		t.Error("feed restarted after Stop")
	}
}

func TestEmitToFullBufferReportsSlowConsumer(t *testing.T) {
	s, _ := newTestServer(t)

	client := newClient("busy", s, nil)
	if !s.addClient(client) {
		t.Fatal("addClient refused a live server")
	}
	// connected event already queued; fill the rest
	for len(client.send) < cap(client.send) {
		client.send <- struct{}{}
	}

	err := s.Emit("busy", models.EventPriceUpdate, models.MPriceUpdate{Symbol: "bitcoin"})
	if !errors.Is(err, helpers.ErrSlowConsumer) {
		t.Errorf("Emit on a full buffer = %v, want ErrSlowConsumer", err)
	}
	if err := s.Emit("ghost", models.EventPriceUpdate, nil); !errors.Is(err, helpers.ErrUnknownConnection) {
		t.Errorf("Emit to unknown connection = %v", err)
	}

	s.clientsMu.Lock()
	delete(s.clients, "busy")
	s.clientsMu.Unlock()
}
