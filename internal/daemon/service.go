// Package daemon provides the long-running runway monitor service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/observability"
	"github.com/theirongolddev/runway/internal/pipeline"
)

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventTransactions = "transactions"
	EventStatusChange = "status_change"
	EventLowBalance   = "low_balance"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Source         pipeline.TransactionSource
	Label          string // shown in /v1/status, e.g. the data dir
	Threshold      int64
	OpeningBalance int64
	Location       *time.Location
	Interval       time.Duration
	Addr           string
	EventsBuffer   int

	Logger  *zap.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// Snapshot is the runway state computed on each poll.
type Snapshot struct {
	At           time.Time               `json:"at"`
	Balance      int64                   `json:"balance"`
	Threshold    int64                   `json:"threshold"`
	Projection   model.ProjectionResult  `json:"projection"`
	Today        model.PeriodSummary     `json:"today"`
	Last30       model.PeriodSummary     `json:"last_30_days"`
	Transactions int                     `json:"transactions"`
	Upcoming     []model.UpcomingExpense `json:"upcoming,omitempty"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Balance            int64 `json:"balance"`
	Revenue            int64 `json:"revenue"`
	Expenses           int64 `json:"expenses"`
	Transactions       int   `json:"transactions"`
	DaysUntilThreshold int64 `json:"days_until_threshold"`
}

func (d Delta) isZero() bool {
	return d.Balance == 0 &&
		d.Revenue == 0 &&
		d.Expenses == 0 &&
		d.Transactions == 0 &&
		d.DaysUntilThreshold == 0
}

// Event is emitted whenever the runway snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Previous  string    `json:"previous_status,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Source          string    `json:"source"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	history     []model.Transaction
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8765"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetrics()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr), zap.Duration("interval", s.cfg.Interval))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.closeSubscribers()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	txs, err := s.cfg.Source.Transactions(ctx)
	if err == nil {
		err = pipeline.ValidateTransactions(txs)
	}
	s.cfg.Metrics.ObservePoll(time.Since(start), err)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.cfg.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", zap.Error(err))
		return
	}

	now := s.cfg.Now().In(s.cfg.Location)
	snap, err := s.buildSnapshot(txs, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("projection failed", zap.Error(err))
		return
	}

	sum := pipeline.Summarize(txs)
	s.cfg.Metrics.ObserveProjection(snap.Balance, snap.Threshold, snap.Projection)
	s.cfg.Metrics.ObserveCounts(sum.IncomeCount, sum.ExpenseCount)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.history = txs
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	var out []Event
	if !prevExists {
		out = append(out, Event{Type: EventSnapshot, Snapshot: snap})
	} else {
		out = eventsBetween(prev, snap)
	}
	for i := range out {
		s.nextEventID++
		out[i].ID = s.nextEventID
		out[i].Timestamp = now
	}
	s.mu.Unlock()

	for _, ev := range out {
		s.log.Info("runway event",
			zap.String("type", ev.Type),
			zap.String("status", string(ev.Snapshot.Projection.Status)),
			zap.Int64("balance", ev.Snapshot.Balance),
		)
		s.publishEvent(ev)
	}
}

func (s *Service) buildSnapshot(txs []model.Transaction, now time.Time) (Snapshot, error) {
	balance := s.cfg.OpeningBalance + pipeline.Balance(txs)
	proj, err := pipeline.Project(model.ProjectionInput{
		Balance:      balance,
		Threshold:    s.cfg.Threshold,
		Transactions: txs,
		Ref:          now,
	})
	if err != nil {
		return Snapshot{}, err
	}

	last30 := pipeline.PeriodRange(pipeline.PeriodMonth, now, time.Time{}, time.Time{})
	upcoming := pipeline.UpcomingRecurring(txs, now, pipeline.UpcomingHorizonDays)
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}

	return Snapshot{
		At:           now,
		Balance:      balance,
		Threshold:    s.cfg.Threshold,
		Projection:   proj,
		Today:        pipeline.Today(txs, now),
		Last30:       pipeline.Summarize(pipeline.InRange(txs, last30)),
		Transactions: len(txs),
		Upcoming:     upcoming,
	}, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Balance:            curr.Balance - prev.Balance,
		Revenue:            curr.Last30.Revenue - prev.Last30.Revenue,
		Expenses:           curr.Last30.Expenses - prev.Last30.Expenses,
		Transactions:       curr.Transactions - prev.Transactions,
		DaysUntilThreshold: curr.Projection.DaysUntilThreshold - prev.Projection.DaysUntilThreshold,
	}
}

// eventsBetween returns the events implied by moving from prev to curr.
// IDs and timestamps are filled in by the caller.
func eventsBetween(prev, curr Snapshot) []Event {
	delta := diffSnapshots(prev, curr)
	var out []Event
	if !delta.isZero() {
		out = append(out, Event{Type: EventTransactions, Snapshot: curr, Delta: delta})
	}
	if prev.Projection.Status != curr.Projection.Status {
		out = append(out, Event{
			Type:     EventStatusChange,
			Snapshot: curr,
			Delta:    delta,
			Previous: string(prev.Projection.Status),
		})
	}
	if prev.Balance > prev.Threshold && curr.Balance <= curr.Threshold {
		out = append(out, Event{Type: EventLowBalance, Snapshot: curr, Delta: delta})
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Source:          s.cfg.Label,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.cfg.Metrics.SetSubscribers(len(s.subs))
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.cfg.Metrics.SetSubscribers(len(s.subs))
}

func (s *Service) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cfg.Metrics.SetSubscribers(0)
}
