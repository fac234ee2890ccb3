package listing

import (
	"sort"
	"strings"
	"time"

	"itscare/internal/dateutil"
	"itscare/internal/finance"
	"itscare/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DateFilter selects the date bucket a booking must fall in.
type DateFilter string

const (
	FilterAll      DateFilter = "all"
	FilterToday    DateFilter = "today"
	FilterTomorrow DateFilter = "tomorrow"
	FilterMonth    DateFilter = "month"
	// FilterDue keeps bookings not yet fully paid, regardless of date.
	FilterDue DateFilter = "due"
)

// SortKey selects the display order of the filtered result.
type SortKey string

const (
	SortDefault SortKey = "default" // newest registration first
	SortDate    SortKey = "date"    // booking date+time ascending
	SortName    SortKey = "name"    // customer name, Korean collation
	SortNet     SortKey = "net"     // settlement amount descending
)

// Criteria bundles the list view's controls. Zero values mean
// "no filtering" on that dimension.
type Criteria struct {
	Date       DateFilter
	Engineer   string
	Contractor string
	Search     string
	Sort       SortKey
}

// Apply narrows and orders a booking snapshot: date bucket, then exact
// engineer/contractor match, then free-text search over the already
// filtered set, then a stable sort. The input slice is never mutated.
// Unrecognized date filters and sort keys fall back to "all" and
// registration order.
func Apply(bookings []models.Booking, c Criteria, now time.Time, policy finance.CommissionPolicy) []models.Booking {
	result := make([]models.Booking, 0, len(bookings))

	for _, b := range bookings {
		switch c.Date {
		case FilterToday:
			if !dateutil.IsToday(b.BookDate, now) {
				continue
			}
		case FilterTomorrow:
			if !dateutil.IsTomorrow(b.BookDate, now) {
				continue
			}
		case FilterMonth:
			if !dateutil.IsThisMonth(b.BookDate, now) {
				continue
			}
		case FilterDue:
			if b.Paid == models.PaidComplete {
				continue
			}
		}
		if c.Engineer != "" && b.Engineer != c.Engineer {
			continue
		}
		if c.Contractor != "" && b.Contractor != c.Contractor {
			continue
		}
		result = append(result, b)
	}

	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		matched := result[:0]
		for _, b := range result {
			if strings.Contains(strings.ToLower(b.SearchText()), q) {
				matched = append(matched, b)
			}
		}
		result = matched
	}

	sortBookings(result, c.Sort, policy)
	return result
}

func sortBookings(bookings []models.Booking, key SortKey, policy finance.CommissionPolicy) {
	switch key {
	case SortDate:
		sort.SliceStable(bookings, func(i, j int) bool {
			return scheduleTime(bookings[i]).Before(scheduleTime(bookings[j]))
		})
	case SortName:
		cl := collate.New(language.Korean)
		sort.SliceStable(bookings, func(i, j int) bool {
			return cl.CompareString(bookings[i].Customer, bookings[j].Customer) < 0
		})
	case SortNet:
		sort.SliceStable(bookings, func(i, j int) bool {
			return policy.Calculate(bookings[i]).NetOrZero() > policy.Calculate(bookings[j]).NetOrZero()
		})
	default:
		sort.SliceStable(bookings, func(i, j int) bool {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		})
	}
}

// scheduleTime combines booking date and time for ordering; a missing
// time counts as midnight, an unparseable date sorts first.
func scheduleTime(b models.Booking) time.Time {
	tm := b.BookTime
	if tm == "" {
		tm = "00:00"
	}
	t, err := time.Parse(dateutil.DateLayout+" 15:04", b.BookDate+" "+tm)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Engineers returns the distinct non-empty engineer names, sorted.
// The list view's engineer dropdown is built from this.
func Engineers(bookings []models.Booking) []string {
	return distinct(bookings, func(b models.Booking) string { return b.Engineer })
}

// Contractors returns the distinct non-empty contractor names, sorted.
func Contractors(bookings []models.Booking) []string {
	return distinct(bookings, func(b models.Booking) string { return b.Contractor })
}

func distinct(bookings []models.Booking, field func(models.Booking) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, b := range bookings {
		v := field(b)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
