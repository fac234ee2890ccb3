package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBooking_Normalize(t *testing.T) {
	t.Run("EmptyFieldsGetDefaults", func(t *testing.T) {
		b := &Booking{}
		b.Normalize()

		assert.Equal(t, TypeWallMounted, b.Type)
		assert.Equal(t, 1, b.Qty)
		assert.Equal(t, ScopeIndoor, b.Scope)
		assert.Equal(t, MeridiemAM, b.Meridiem)
		assert.Equal(t, ContractorInHouse, b.Contractor)
		assert.Equal(t, PayCard, b.PayMethod)
		assert.Equal(t, PaidIncomplete, b.Paid)
	})

	t.Run("FilledFieldsKept", func(t *testing.T) {
		b := &Booking{
			Type:       TypeStand,
			Qty:        3,
			Scope:      ScopeBoth,
			Meridiem:   MeridiemPM,
			Contractor: ContractorSamsung,
			PayMethod:  PayCash,
			Paid:       PaidComplete,
		}
		b.Normalize()

		assert.Equal(t, TypeStand, b.Type)
		assert.Equal(t, 3, b.Qty)
		assert.Equal(t, ScopeBoth, b.Scope)
		assert.Equal(t, MeridiemPM, b.Meridiem)
		assert.Equal(t, ContractorSamsung, b.Contractor)
		assert.Equal(t, PayCash, b.PayMethod)
		assert.Equal(t, PaidComplete, b.Paid)
	})

	t.Run("StrayPaidValueBecomesIncomplete", func(t *testing.T) {
		b := &Booking{Paid: PaidStatus("paid???")}
		b.Normalize()
		assert.Equal(t, PaidIncomplete, b.Paid)
	})
}

func TestPaidStatus(t *testing.T) {
	assert.Equal(t, PaidComplete, ParsePaidStatus("완료"))
	assert.Equal(t, PaidIncomplete, ParsePaidStatus("미완료"))
	assert.Equal(t, PaidIncomplete, ParsePaidStatus(""))
	assert.Equal(t, PaidIncomplete, ParsePaidStatus("done"))

	assert.Equal(t, PaidIncomplete, PaidComplete.Toggle())
	assert.Equal(t, PaidComplete, PaidIncomplete.Toggle())
}

func TestBooking_ScheduleLabel(t *testing.T) {
	b := Booking{Meridiem: MeridiemPM, BookTime: "14:30"}
	assert.Equal(t, "오후 14:30", b.ScheduleLabel())

	b.BookTime = ""
	assert.Equal(t, "오후", b.ScheduleLabel())
}
