package tui

import (
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
)

var testRef = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func sampleTransactions() []model.Transaction {
	txs := []model.Transaction{{
		ID: "in-1", Kind: model.KindIncome, Amount: 50_000, OccurredAt: testRef.AddDate(0, 0, -45),
	}}
	for i := 1; i <= 30; i++ {
		txs = append(txs, model.Transaction{
			ID:          "ex-" + strconv.Itoa(i),
			Kind:        model.KindExpense,
			Amount:      1_000,
			OccurredAt:  testRef.AddDate(0, 0, -i),
			CategoryID:  "stock",
			Description: "Stock purchase",
		})
	}
	return txs
}

// loadedApp returns an app that has received its first data load. The
// config lives in a temp dir so no setup form is shown.
func loadedApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.General.Timezone = "UTC"
	if err := config.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	a := NewApp(Options{
		Config:    cfg,
		DataDir:   t.TempDir(),
		Days:      30,
		Threshold: cfg.Business.LowBalanceThreshold,
		Ref:       testRef,
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	m, _ = m.Update(DataLoadedMsg{Transactions: sampleTransactions()})
	return m.(App)
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestDataLoadedComputesProjection(t *testing.T) {
	a := loadedApp(t)

	if a.setupForm != nil {
		t.Fatal("setup form shown although config exists")
	}
	if a.balance != 20_000 {
		t.Fatalf("balance = %d, want 20000", a.balance)
	}
	if a.projection.Status != model.StatusHealthy || a.projection.DaysUntilThreshold != 15 {
		t.Fatalf("projection = %+v, want healthy/15", a.projection)
	}
	if len(a.curve) != 31 {
		t.Fatalf("curve points = %d, want 31", len(a.curve))
	}
	if len(a.daily) != 30 {
		t.Fatalf("daily buckets = %d, want 30", len(a.daily))
	}
	if len(a.categories) != 1 || a.categories[0].CategoryID != "stock" {
		t.Fatalf("categories = %+v, want one stock share", a.categories)
	}
}

func TestFixedReferenceIgnoresLaterTransactions(t *testing.T) {
	a := loadedApp(t)

	txs := append(sampleTransactions(), model.Transaction{
		ID: "later", Kind: model.KindExpense, Amount: 90_000, OccurredAt: testRef.AddDate(0, 0, 10),
	})
	m, _ := a.Update(DataLoadedMsg{Transactions: txs})
	a = m.(App)

	if len(a.txs) != len(sampleTransactions()) {
		t.Fatalf("kept %d transactions, want %d", len(a.txs), len(sampleTransactions()))
	}
	if a.balance != 20_000 {
		t.Fatalf("balance = %d, want 20000", a.balance)
	}
	if a.projection.Status != model.StatusHealthy {
		t.Fatalf("status = %s, want healthy", a.projection.Status)
	}
}

func TestSetupFormShownWithoutConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{Config: config.DefaultConfig(), Ref: testRef})
	m, _ := a.Update(DataLoadedMsg{Transactions: sampleTransactions()})
	if m.(App).setupForm == nil {
		t.Fatal("setup form not shown on first run")
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)

	for _, tc := range []struct {
		key  string
		want int
	}{
		{"f", tabFlow},
		{"c", tabCategories},
		{"m", tabMonthly},
		{"x", tabSettings},
		{"o", tabOverview},
		{"right", tabFlow},
	} {
		a = press(t, a, tc.key)
		if a.activeTab != tc.want {
			t.Fatalf("after %q activeTab = %d, want %d", tc.key, a.activeTab, tc.want)
		}
	}
}

func TestMonthlyNavigation(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "m")

	if len(a.months) != 2 {
		t.Fatalf("months = %v, want Jan and Dec", a.months)
	}
	if a.report.Month != time.January {
		t.Fatalf("report month = %v, want January", a.report.Month)
	}
	a = press(t, a, "j")
	if a.report.Month != time.December || a.report.Year != 2024 {
		t.Fatalf("after j report = %d-%v, want 2024-December", a.report.Year, a.report.Month)
	}
	a = press(t, a, "j")
	if a.monthIdx != 1 {
		t.Fatalf("monthIdx = %d, want clamp at 1", a.monthIdx)
	}
}

func TestSettingsThresholdEdit(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "x")
	a = press(t, a, "j") // threshold
	a = press(t, a, "enter")
	if !a.settings.editing {
		t.Fatal("enter did not start editing")
	}

	a.settings.input.SetValue("16000")
	a = press(t, a, "enter")
	if a.settings.saveErr != nil {
		t.Fatalf("save: %v", a.settings.saveErr)
	}
	if a.threshold != 16_000 {
		t.Fatalf("threshold = %d, want 16000", a.threshold)
	}
	if a.projection.Status != model.StatusCritical {
		t.Fatalf("status = %s, want critical once balance is below the floor", a.projection.Status)
	}

	saved, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Business.LowBalanceThreshold != 16_000 {
		t.Fatalf("saved threshold = %d, want 16000", saved.Business.LowBalanceThreshold)
	}
}

func TestSettingsRejectsNegativeThreshold(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "x")
	a = press(t, a, "j")
	a = press(t, a, "enter")
	a.settings.input.SetValue("-5")
	a = press(t, a, "enter")

	if a.settings.saveErr == nil {
		t.Fatal("expected error for negative threshold")
	}
	if a.threshold != config.DefaultThreshold {
		t.Fatalf("threshold = %d, want unchanged %d", a.threshold, config.DefaultThreshold)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t)
	for _, key := range []string{"o", "f", "c", "m", "x"} {
		a = press(t, a, key)
		out := a.View()
		if !strings.Contains(out, "Overview") {
			t.Fatalf("tab %q view missing tab bar", key)
		}
		if got := strings.Count(out, "\n") + 1; got != 50 {
			t.Fatalf("tab %q view height = %d, want 50", key, got)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Fatalf("View() = %q, want narrow warning", out)
	}
}
