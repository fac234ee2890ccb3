package summary

import (
	"strings"

	"itscare/internal/finance"
	"itscare/internal/models"
)

// Stats is one accumulation bucket. Sales counts every booking's gross
// total; Fee and Net only accumulate bookings whose commission rate
// resolved; the rest are tallied in Unknown. Invariant per bucket:
// Count = resolved bookings + Unknown.
type Stats struct {
	Count   int   `json:"count"`
	Sales   int64 `json:"sales"`
	Fee     int64 `json:"fee"`
	Net     int64 `json:"net"`
	Unknown int   `json:"unknown"`
}

// GroupStats is a keyed bucket for the per-contractor and per-engineer
// breakdowns.
type GroupStats struct {
	Key string `json:"key"`
	Stats
}

// Monthly is the settlement summary for one calendar month. Bucket
// slices keep first-encounter order; consumers sort for display.
type Monthly struct {
	Month        string       `json:"month"`
	Total        Stats        `json:"total"`
	ByContractor []GroupStats `json:"by_contractor"`
	ByEngineer   []GroupStats `json:"by_engineer"`
}

// grouping accumulates keyed buckets in insertion order.
type grouping struct {
	index   map[string]int
	buckets []GroupStats
}

func newGrouping() *grouping {
	return &grouping{index: make(map[string]int)}
}

func (g *grouping) bucket(key string) *Stats {
	if key == "" {
		key = models.UnassignedKey
	}
	i, ok := g.index[key]
	if !ok {
		i = len(g.buckets)
		g.index[key] = i
		g.buckets = append(g.buckets, GroupStats{Key: key})
	}
	return &g.buckets[i].Stats
}

func (s *Stats) add(f finance.Financials) {
	s.Count++
	s.Sales += f.Total
	if f.Fee != nil && f.Net != nil {
		s.Fee += *f.Fee
		s.Net += *f.Net
	} else {
		s.Unknown++
	}
}

// Summarize aggregates the bookings of one target month (YYYY-MM) into
// a grand total plus per-contractor and per-engineer buckets. Month
// membership is a string-prefix match on the booking date, so malformed
// dates simply fall outside every month.
func Summarize(bookings []models.Booking, month string, policy finance.CommissionPolicy) Monthly {
	result := Monthly{Month: month}
	contractors := newGrouping()
	engineers := newGrouping()

	for _, b := range bookings {
		if month == "" || !strings.HasPrefix(b.BookDate, month) {
			continue
		}

		f := policy.Calculate(b)
		result.Total.add(f)
		contractors.bucket(b.Contractor).add(f)
		engineers.bucket(b.Engineer).add(f)
	}

	result.ByContractor = contractors.buckets
	result.ByEngineer = engineers.buckets
	return result
}
