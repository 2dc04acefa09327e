package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theirongolddev/runway/internal/model"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu  sync.Mutex
	txs []model.Transaction
	err error
}

func (f *fakeSource) Transactions(context.Context) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Transaction, len(f.txs))
	copy(out, f.txs)
	return out, f.err
}

func (f *fakeSource) add(t model.Transaction) {
	f.mu.Lock()
	f.txs = append(f.txs, t)
	f.mu.Unlock()
}

// healthyHistory leaves a balance of 20,000 with 1,000/day burn: 15 days
// of runway above a 5,000 threshold.
func healthyHistory() []model.Transaction {
	txs := []model.Transaction{{
		ID: "in-1", Kind: model.KindIncome, Amount: 50_000, OccurredAt: testNow.AddDate(0, 0, -45),
	}}
	for i := 1; i <= 30; i++ {
		txs = append(txs, model.Transaction{
			ID:         "ex-" + strconv.Itoa(i),
			Kind:       model.KindExpense,
			Amount:     1_000,
			OccurredAt: testNow.AddDate(0, 0, -i),
			CategoryID: "stock",
		})
	}
	return txs
}

func newTestService(src *fakeSource) *Service {
	return New(Config{
		Source:    src,
		Threshold: 5_000,
		Location:  time.UTC,
		Interval:  10 * time.Second,
		Now:       func() time.Time { return testNow },
	})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Balance:      20_000,
		Transactions: 31,
		Last30:       model.PeriodSummary{Revenue: 0, Expenses: 30_000},
		Projection:   model.ProjectionResult{DaysUntilThreshold: 15},
	}
	curr := Snapshot{
		Balance:      4_000,
		Transactions: 32,
		Last30:       model.PeriodSummary{Revenue: 0, Expenses: 46_000},
		Projection:   model.ProjectionResult{DaysUntilThreshold: 0},
	}

	delta := diffSnapshots(prev, curr)
	if delta.Balance != -16_000 {
		t.Fatalf("Balance delta = %d, want -16000", delta.Balance)
	}
	if delta.Expenses != 16_000 {
		t.Fatalf("Expenses delta = %d, want 16000", delta.Expenses)
	}
	if delta.Transactions != 1 {
		t.Fatalf("Transactions delta = %d, want 1", delta.Transactions)
	}
	if delta.DaysUntilThreshold != -15 {
		t.Fatalf("DaysUntilThreshold delta = %d, want -15", delta.DaysUntilThreshold)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Source:       &fakeSource{},
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsStatusEvents(t *testing.T) {
	src := &fakeSource{txs: healthyHistory()}
	s := newTestService(src)
	ctx := context.Background()

	s.pollOnce(ctx)
	st := s.snapshotStatus()
	if st.Summary.Balance != 20_000 {
		t.Fatalf("Balance = %d, want 20000", st.Summary.Balance)
	}
	if st.Summary.Projection.Status != model.StatusHealthy || st.Summary.Projection.DaysUntilThreshold != 15 {
		t.Fatalf("Projection = %+v, want healthy/15", st.Summary.Projection)
	}

	// Unchanged data emits nothing new.
	s.pollOnce(ctx)
	if got := s.snapshotStatus().EventCount; got != 1 {
		t.Fatalf("EventCount after idle poll = %d, want 1", got)
	}

	src.add(model.Transaction{ID: "big", Kind: model.KindExpense, Amount: 16_000, OccurredAt: testNow})
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	wantTypes := []string{EventSnapshot, EventTransactions, EventStatusChange, EventLowBalance}
	if len(events) != len(wantTypes) {
		t.Fatalf("events = %d, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Fatalf("events[%d].Type = %q, want %q", i, events[i].Type, want)
		}
		if events[i].ID != int64(i+1) {
			t.Fatalf("events[%d].ID = %d, want %d", i, events[i].ID, i+1)
		}
	}
	if events[2].Previous != string(model.StatusHealthy) {
		t.Fatalf("status_change previous = %q, want healthy", events[2].Previous)
	}
	if events[3].Snapshot.Projection.DaysUntilThreshold != 0 {
		t.Fatalf("low balance days = %d, want 0", events[3].Snapshot.Projection.DaysUntilThreshold)
	}
}

func TestPollErrorKeepsLastSnapshot(t *testing.T) {
	src := &fakeSource{txs: healthyHistory()}
	s := newTestService(src)
	s.pollOnce(context.Background())

	src.mu.Lock()
	src.err = errors.New("disk gone")
	src.mu.Unlock()
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError != "disk gone" {
		t.Fatalf("LastError = %q, want %q", st.LastError, "disk gone")
	}
	if st.Summary.Balance != 20_000 {
		t.Fatalf("Balance = %d, want previous snapshot 20000", st.Summary.Balance)
	}
	if st.PollCount != 2 {
		t.Fatalf("PollCount = %d, want 2", st.PollCount)
	}
}

func TestPollRejectsInvalidTransactions(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{{ID: "x", Kind: "refund", Amount: 10, OccurredAt: testNow}}}
	s := newTestService(src)
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError == "" {
		t.Fatal("expected validation error to be recorded")
	}
	if st.EventCount != 0 {
		t.Fatalf("EventCount = %d, want 0", st.EventCount)
	}
}

func TestHTTPHandlers(t *testing.T) {
	s := newTestService(&fakeSource{txs: healthyHistory()})
	h := s.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projection", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("projection before poll = %d, want 503", rec.Code)
	}

	s.pollOnce(context.Background())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Summary.Projection.Status != model.StatusHealthy {
		t.Fatalf("status = %q, want healthy", st.Summary.Projection.Status)
	}
	if st.Summary.Projection.ThresholdDate == nil {
		t.Fatal("threshold date missing from status")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?since=1", nil))
	var events []Event
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events since 1 = %d, want 0", len(events))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?since=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad since = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projection", nil))
	var curve []model.ProjectionPoint
	if err := json.NewDecoder(rec.Body).Decode(&curve); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if len(curve) != 31 {
		t.Fatalf("curve points = %d, want 31", len(curve))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "runway_balance_kes 20000") {
		t.Fatalf("metrics missing balance gauge:\n%s", body)
	}
}

func TestWebSocketSendsCurrentSnapshot(t *testing.T) {
	s := newTestService(&fakeSource{txs: healthyHistory()})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	if resp.Body != nil {
		_ = resp.Body.Close()
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != EventSnapshot || ev.Snapshot.Balance != 20_000 {
		t.Fatalf("first event = %s/%d, want snapshot/20000", ev.Type, ev.Snapshot.Balance)
	}
}
