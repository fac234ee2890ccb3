package finance

import (
	"math"
	"strconv"
	"strings"

	"itscare/internal/models"
)

// Financials is the computed money tuple for one booking. Rate, Fee
// and Net are nil when the commission rate cannot be resolved; such a
// booking still counts toward gross sales but not toward settled sums.
type Financials struct {
	Total int64
	Rate  *float64
	Fee   *int64
	Net   *int64
}

// CommissionPolicy maps a contractor name to its default commission
// rate, used when a booking carries no explicit rate. Contractors
// outside the map resolve to "undetermined".
type CommissionPolicy map[string]float64

// DefaultPolicy carries the two built-in contractor rules: in-house
// jobs keep everything, referral-partner jobs give up 30%.
func DefaultPolicy() CommissionPolicy {
	return CommissionPolicy{
		models.ContractorInHouse:  0,
		models.ContractorIkkeulim: 30,
	}
}

// ParseMoney extracts the sign-less integer amount from raw price
// text. Formatting commas, currency marks and even a typed minus are
// stripped; empty or digit-free input parses to 0.
func ParseMoney(s string) int64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ResolveRate decides the commission rate for a booking: explicit text
// wins when it parses to a finite number (no clamping, 0 and >100 are
// legal), otherwise the policy default for the contractor, otherwise
// nil.
func (p CommissionPolicy) ResolveRate(b models.Booking) *float64 {
	if input := strings.TrimSpace(b.CommissionRate); input != "" {
		r, err := strconv.ParseFloat(input, 64)
		if err != nil || math.IsInf(r, 0) || math.IsNaN(r) {
			return nil
		}
		return &r
	}
	if rate, ok := p[b.Contractor]; ok {
		return &rate
	}
	return nil
}

// Calculate produces the total/rate/fee/net tuple for one booking.
// Pure: identical input always yields identical output. Fee rounds
// half-up; net never goes below zero even when the rate exceeds 100.
func (p CommissionPolicy) Calculate(b models.Booking) Financials {
	total := ParseMoney(b.PriceTotal)
	rate := p.ResolveRate(b)

	f := Financials{Total: total, Rate: rate}
	if rate == nil {
		return f
	}

	fee := int64(math.Round(float64(total) * *rate / 100))
	net := total - fee
	if net < 0 {
		net = 0
	}
	f.Fee = &fee
	f.Net = &net
	return f
}

// NetOrZero is the sort/display helper: undetermined settlements rank
// as zero.
func (f Financials) NetOrZero() int64 {
	if f.Net == nil {
		return 0
	}
	return *f.Net
}
