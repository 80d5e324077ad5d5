package kraken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/arb-ingest/internal/book"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/model"
)

// mockWSServer answers the first subscribe with ack, then writes frames.
func mockWSServer(t *testing.T, ack func(req subscribeRequest) string, frames []string) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"channel":"status","type":"update","data":[{"system":"online"}]}`))

		var req subscribeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		for _, f := range frames {
			if f == "ACK" {
				f = ack(req)
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func okAck(req subscribeRequest) string {
	b, _ := json.Marshal(map[string]any{
		"method":  "subscribe",
		"success": true,
		"req_id":  req.ReqID,
		"result":  map[string]any{"channel": "book", "symbol": req.Params.Symbol[0], "depth": req.Params.Depth},
	})
	return string(b)
}

func testVenue(server *httptest.Server) *Venue {
	cfg := DefaultConfig()
	cfg.WSURL = "ws" + strings.TrimPrefix(server.URL, "http")
	cfg.BookDepth = 5
	return New(cfg, nil)
}

func dial(t *testing.T, v *Venue) exchange.Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sess, err := v.Dial(ctx, "BTC/USDT")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func next(t *testing.T, sess exchange.Session) model.OrderBookSnapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := sess.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	return snap
}

const (
	snapshotFrame = `{"channel":"book","type":"snapshot","data":[{"symbol":"BTC/USDT",
		"bids":[{"price":100.0,"qty":1.5},{"price":99.0,"qty":2.0}],
		"asks":[{"price":101.0,"qty":1.0},{"price":102.0,"qty":3.0}],
		"checksum":12345}]}`
	updateFrame = `{"channel":"book","type":"update","data":[{"symbol":"BTC/USDT",
		"bids":[{"price":100.0,"qty":0}],
		"asks":[{"price":100.5,"qty":0.25}],
		"checksum":54321,"timestamp":"2024-05-01T12:00:00.250Z"}]}`
)

func TestSubscriptionDepth(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 10},
		{10, 10},
		{11, 25},
		{100, 100},
		{5000, 1000},
	}
	for _, tt := range tests {
		if got := SubscriptionDepth(tt.in); got != tt.want {
			t.Errorf("SubscriptionDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestVenue_SubscribeRequest(t *testing.T) {
	got := make(chan subscribeRequest, 1)
	server := mockWSServer(t, func(req subscribeRequest) string {
		got <- req
		return okAck(req)
	}, []string{"ACK"})

	dial(t, testVenue(server))

	req := <-got
	if req.Method != "subscribe" || req.Params.Channel != "book" {
		t.Errorf("request = %+v", req)
	}
	if len(req.Params.Symbol) != 1 || req.Params.Symbol[0] != "BTC/USDT" {
		t.Errorf("symbol = %v, want [BTC/USDT]", req.Params.Symbol)
	}
	if req.Params.Depth != 10 {
		t.Errorf("depth = %d, want 10", req.Params.Depth)
	}
	if !req.Params.Snapshot {
		t.Error("snapshot not requested")
	}
	if req.ReqID == 0 {
		t.Error("req_id not set")
	}
}

func TestSession_SnapshotThenUpdate(t *testing.T) {
	server := mockWSServer(t, okAck, []string{
		"ACK",
		`{"channel":"heartbeat"}`,
		snapshotFrame,
		updateFrame,
	})
	sess := dial(t, testVenue(server))

	snap := next(t, sess)
	if snap.Exchange != "kraken" || snap.Symbol != "BTC/USDT" {
		t.Errorf("identity = %s %s", snap.Exchange, snap.Symbol)
	}
	if snap.ExchangeTimestampMs != 0 {
		t.Errorf("snapshot without timestamp: ExchangeTimestampMs = %d, want 0", snap.ExchangeTimestampMs)
	}
	if snap.Bids[0] != (model.PriceLevel{Price: 100, Size: 1.5}) {
		t.Errorf("best bid = %+v", snap.Bids[0])
	}

	snap = next(t, sess)
	want := time.Date(2024, 5, 1, 12, 0, 0, 250_000_000, time.UTC).UnixMilli()
	if snap.ExchangeTimestampMs != want {
		t.Errorf("ExchangeTimestampMs = %d, want %d", snap.ExchangeTimestampMs, want)
	}
	if snap.Bids[0].Price != 99 {
		t.Errorf("best bid = %v, want 99 after delete", snap.Bids[0].Price)
	}
	if snap.Asks[0] != (model.PriceLevel{Price: 100.5, Size: 0.25}) {
		t.Errorf("best ask = %+v", snap.Asks[0])
	}
}

func TestSession_FramesBeforeAck(t *testing.T) {
	server := mockWSServer(t, okAck, []string{snapshotFrame, "ACK"})
	sess := dial(t, testVenue(server))

	snap := next(t, sess)
	if len(snap.Bids) != 2 || len(snap.Asks) != 2 {
		t.Errorf("levels = %d/%d, want 2/2", len(snap.Bids), len(snap.Asks))
	}
}

func TestSession_UpdateBeforeSnapshotIgnored(t *testing.T) {
	server := mockWSServer(t, okAck, []string{"ACK", updateFrame, snapshotFrame})
	sess := dial(t, testVenue(server))

	snap := next(t, sess)
	if snap.Bids[0].Price != 100 {
		t.Errorf("best bid = %v, want 100 from snapshot", snap.Bids[0].Price)
	}
}

func TestSession_TruncatesToDepth(t *testing.T) {
	var levels []string
	for i := 1; i <= 12; i++ {
		levels = append(levels, fmt.Sprintf(`{"price":%d.5,"qty":1}`, 80+i))
	}
	frame := `{"channel":"book","type":"update","data":[{"symbol":"BTC/USDT","bids":[` +
		strings.Join(levels, ",") + `],"asks":[],"checksum":1}]}`

	server := mockWSServer(t, okAck, []string{"ACK", snapshotFrame, frame})
	sess := dial(t, testVenue(server))

	next(t, sess)
	snap := next(t, sess)

	if got := sess.(*session).book.Len(book.Bid); got != 10 {
		t.Errorf("bid levels = %d, want 10", got)
	}
	if len(snap.Bids) != 5 || snap.Bids[0].Price != 100 {
		t.Errorf("bids = %+v, want top 5 from 100", snap.Bids)
	}
}

func TestSession_SubscribeRejected(t *testing.T) {
	server := mockWSServer(t, func(req subscribeRequest) string {
		b, _ := json.Marshal(map[string]any{
			"method":  "subscribe",
			"success": false,
			"error":   "Currency pair not supported BTC/USDT",
			"req_id":  req.ReqID,
		})
		return string(b)
	}, []string{"ACK"})

	_, err := testVenue(server).Dial(context.Background(), "BTC/USDT")
	if !errors.Is(err, ErrSubscribeRejected) {
		t.Errorf("err = %v, want ErrSubscribeRejected", err)
	}
}

func TestSession_AckTimeout(t *testing.T) {
	server := mockWSServer(t, okAck, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := testVenue(server).Dial(ctx, "BTC/USDT")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestSession_MalformedBook(t *testing.T) {
	server := mockWSServer(t, okAck, []string{
		"ACK",
		`{"channel":"book","type":"update","data":{"symbol":"BTC/USDT"}}`,
	})
	sess := dial(t, testVenue(server))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := sess.Next(ctx)
	var decodeErr *exchange.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("err = %v, want DecodeError", err)
	}
}

func TestVenue_InvalidSymbol(t *testing.T) {
	v := New(DefaultConfig(), nil)
	if _, err := v.Dial(context.Background(), "BTCUSDT"); !errors.Is(err, exchange.ErrUnknownSymbol) {
		t.Errorf("err = %v, want ErrUnknownSymbol", err)
	}
}
