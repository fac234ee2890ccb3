package models

// PaidStatus is the two-valued settlement state. Anything that is not
// exactly PaidComplete is treated as incomplete.
type PaidStatus string

const (
	PaidComplete   PaidStatus = "완료"
	PaidIncomplete PaidStatus = "미완료"
)

// ParsePaidStatus maps raw text to a status; only the exact complete
// marker counts, everything else is incomplete.
func ParsePaidStatus(s string) PaidStatus {
	if s == string(PaidComplete) {
		return PaidComplete
	}
	return PaidIncomplete
}

// Toggle flips between complete and incomplete.
func (p PaidStatus) Toggle() PaidStatus {
	if p == PaidComplete {
		return PaidIncomplete
	}
	return PaidComplete
}

// Meridiem is the AM/PM indicator, stored independently of the
// time-of-day value.
type Meridiem string

const (
	MeridiemAM Meridiem = "오전"
	MeridiemPM Meridiem = "오후"
)

// EquipmentType enumerates the air-conditioner kinds offered on the
// booking form.
type EquipmentType string

const (
	TypeWallMounted EquipmentType = "벽걸이"
	TypeStand       EquipmentType = "스탠드"
	TypeStandSmart  EquipmentType = "스탠드스마트"
	TypeCommercial  EquipmentType = "업소용"
	Type2In1        EquipmentType = "2IN1"
	Type2In1Smart   EquipmentType = "2IN1스마트"
	TypeCeiling1Way EquipmentType = "천장형1way"
	TypeCeiling4Way EquipmentType = "천장형4way"
	TypeOther       EquipmentType = "기타"
)

// CleaningScope enumerates which units get cleaned.
type CleaningScope string

const (
	ScopeIndoor  CleaningScope = "실내기"
	ScopeOutdoor CleaningScope = "실외기"
	ScopeBoth    CleaningScope = "실내기+실외기"
)

// PayMethod enumerates how the customer pays.
type PayMethod string

const (
	PayCard     PayMethod = "카드"
	PayCash     PayMethod = "현금"
	PayTransfer PayMethod = "이체"
)

// Known contractors. Contractor stays a plain string on Booking because
// imports may carry names outside this set; these are the values the
// form offers and the commission policy knows about.
const (
	ContractorInHouse    = "자체건"
	ContractorIkkeulim   = "이끌림"
	ContractorSamsung    = "삼성전자"
	ContractorHSHomecare = "HS홈케어"
)

// UnassignedKey is the bucket key for bookings with a blank contractor
// or engineer in the monthly summary.
const UnassignedKey = "미지정"
