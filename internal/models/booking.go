package models

import "time"

// Booking is the single persisted entity: one cleaning job for one
// customer. Money fields stay as raw text exactly as entered; parsing
// happens in the finance package.
type Booking struct {
	ID             string        `json:"id"`
	Customer       string        `json:"customer"`
	Phone          string        `json:"phone"`
	Address        string        `json:"address"`
	Group          string        `json:"group"`
	Model          string        `json:"model"`
	Type           EquipmentType `json:"type"`
	Qty            int           `json:"qty"`
	Scope          CleaningScope `json:"scope"`
	PriceTotal     string        `json:"price_total"`
	BookDate       string        `json:"book_date"` // YYYY-MM-DD
	BookTime       string        `json:"book_time"` // HH:MM, may be empty
	Meridiem       Meridiem      `json:"ampm"`
	Engineer       string        `json:"engineer"`
	Contractor     string        `json:"contractor"`
	CommissionRate string        `json:"commission_rate"` // empty = resolve via contractor default
	PayMethod      PayMethod     `json:"pay_method"`
	Paid           PaidStatus    `json:"paid"`
	Memo           string        `json:"memo"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Normalize fills enum defaults for fields left blank by manual entry
// or a sparse CSV row.
func (b *Booking) Normalize() {
	if b.Type == "" {
		b.Type = TypeWallMounted
	}
	if b.Qty <= 0 {
		b.Qty = 1
	}
	if b.Scope == "" {
		b.Scope = ScopeIndoor
	}
	if b.Meridiem == "" {
		b.Meridiem = MeridiemAM
	}
	if b.Contractor == "" {
		b.Contractor = ContractorInHouse
	}
	if b.PayMethod == "" {
		b.PayMethod = PayCard
	}
	if b.Paid != PaidComplete {
		b.Paid = PaidIncomplete
	}
}

// ScheduleLabel renders the combined meridiem + time text used in the
// list, the detail view and the export's 시간 column.
func (b *Booking) ScheduleLabel() string {
	if b.BookTime == "" {
		return string(b.Meridiem)
	}
	return string(b.Meridiem) + " " + b.BookTime
}

// SearchText concatenates the fields free-text search matches against.
func (b *Booking) SearchText() string {
	return b.Customer + b.Phone + b.Address + b.Engineer + b.Model
}
