package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

// UpcomingHorizonDays is how far ahead recurring expenses are surfaced.
const UpcomingHorizonDays = 30

// UpcomingRecurring projects each recurring expense forward one month at a
// time until it falls after ref, and returns those due within horizon days,
// soonest first.
func UpcomingRecurring(txs []model.Transaction, ref time.Time, horizon int) []model.UpcomingExpense {
	limit := ref.AddDate(0, 0, horizon)

	var upcoming []model.UpcomingExpense
	for _, t := range txs {
		if t.Kind != model.KindExpense || !t.IsRecurring {
			continue
		}

		next := t.OccurredAt
		for n := 1; !next.After(ref); n++ {
			next = t.OccurredAt.AddDate(0, n, 0)
		}
		if next.After(limit) {
			continue
		}

		upcoming = append(upcoming, model.UpcomingExpense{
			ID:          t.ID,
			Description: recurringName(t),
			CategoryID:  t.Category(),
			Amount:      t.Amount,
			DueDate:     next,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	return upcoming
}

func recurringName(t model.Transaction) string {
	switch {
	case t.Counterparty != "":
		return t.Counterparty
	case t.Description != "":
		return t.Description
	default:
		return "Recurring expense"
	}
}
