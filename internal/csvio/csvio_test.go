package csvio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"itscare/internal/finance"
	"itscare/internal/models"
	"itscare/internal/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.Local)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("imported-%d", n)
	}
}

func TestExportBookings(t *testing.T) {
	policy := finance.DefaultPolicy()
	bookings := []models.Booking{
		{
			ID: "1", Customer: "김철수", Phone: "010-1111-2222", Address: "울산 남구, 3층",
			Group: "가정", Model: "AF19", Type: models.TypeStand, Qty: 2,
			Scope: models.ScopeBoth, BookDate: "2024-06-15", BookTime: "14:00",
			Meridiem: models.MeridiemPM, Engineer: "박기사",
			Contractor: models.ContractorIkkeulim, PriceTotal: "200000",
			PayMethod: models.PayCard, Paid: models.PaidComplete,
			Memo: "주차\n가능",
		},
		{
			ID: "2", Customer: "이영희", Phone: "010-3333-4444",
			Contractor: models.ContractorSamsung, PriceTotal: "90000",
			Paid: models.PaidIncomplete,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportBookings(&buf, bookings, policy))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFF"))

	rows, err := ReadRows(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeaders, rows[0])

	first := rows[1]
	assert.Equal(t, "김철수", first[0])
	assert.Equal(t, "울산 남구, 3층", first[2]) // comma survives quoting
	assert.Equal(t, "2", first[6])
	assert.Equal(t, "오후 14:00", first[9])
	assert.Equal(t, "200000", first[13])
	assert.Equal(t, "60000", first[14])
	assert.Equal(t, "140000", first[15])
	assert.Equal(t, "완료", first[16])
	assert.Equal(t, "주차 가능", first[17], "memo newlines flattened")

	second := rows[2]
	assert.Equal(t, "90000", second[13])
	assert.Equal(t, "", second[14], "undetermined fee is an empty cell")
	assert.Equal(t, "", second[15], "undetermined net is an empty cell")
}

func TestExportGroupSummary(t *testing.T) {
	buckets := []summary.GroupStats{
		{Key: "자체건", Stats: summary.Stats{Count: 2, Sales: 300000, Fee: 0, Net: 300000}},
		{Key: "미지정", Stats: summary.Stats{Count: 1, Sales: 50000, Unknown: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportGroupSummary(&buf, "도급업체", buckets))

	rows, err := ReadRows(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"도급업체", "건수", "총매출", "수수료", "정산액", "미확정건"}, rows[0])
	assert.Equal(t, []string{"자체건", "2", "300000", "0", "300000", "0"}, rows[1])
	assert.Equal(t, []string{"미지정", "1", "50000", "0", "0", "1"}, rows[2])
}

func TestMapRows(t *testing.T) {
	rows := [][]string{
		{"고객명", "연락처", "주소", "예약일", "시간", "종류", "대수", "결제", "도급업체"},
		{"김철수", "010-1111-2222", "울산", "2024-06-20", "오후 15:00", "스탠드", "2", "완료", "이끌림"},
		{"이영희", "010-3333-4444", "부산", "2024-06-21", "", "", "", "", ""},
		{"", "010-5555-6666", "서울", "2024-06-22", "", "", "", "", ""}, // no name
		{"최민준", "010-7777"}, // truncated row
	}

	got := MapRows(rows, importNow, seqIDs())
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "imported-1", first.ID)
	assert.Equal(t, "김철수", first.Customer)
	assert.Equal(t, models.MeridiemPM, first.Meridiem)
	assert.Equal(t, "15:00", first.BookTime)
	assert.Equal(t, models.TypeStand, first.Type)
	assert.Equal(t, 2, first.Qty)
	assert.Equal(t, models.PaidComplete, first.Paid)
	assert.Equal(t, models.ContractorIkkeulim, first.Contractor)
	assert.Equal(t, importNow, first.CreatedAt)

	second := got[1]
	assert.Equal(t, models.TypeWallMounted, second.Type, "blank type defaults")
	assert.Equal(t, 1, second.Qty, "blank qty defaults")
	assert.Equal(t, models.ScopeIndoor, second.Scope)
	assert.Equal(t, models.ContractorInHouse, second.Contractor)
	assert.Equal(t, models.PaidIncomplete, second.Paid)
	assert.Equal(t, models.MeridiemAM, second.Meridiem)
}

func TestMapRows_DecoratedHeadersStillMap(t *testing.T) {
	rows := [][]string{
		{"* 고객명 (필수)", "연락처(숫자만)", "주소", "예약일", "총금액(원)"},
		{"김철수", "010-1111-2222", "울산", "2024-06-20", "150,000"},
	}

	got := MapRows(rows, importNow, seqIDs())
	require.Len(t, got, 1)
	assert.Equal(t, "김철수", got[0].Customer)
	assert.Equal(t, "150,000", got[0].PriceTotal)
}

func TestMapRows_HeaderOnlyOrEmpty(t *testing.T) {
	assert.Nil(t, MapRows(nil, importNow, nil))
	assert.Nil(t, MapRows([][]string{{"고객명", "연락처", "주소", "예약일", "시간"}}, importNow, nil))
}

func TestReadRows_StripsBOMFromDribblingReader(t *testing.T) {
	raw := "\uFEFF고객명,연락처\n김철수,010-1111-2222\n"

	// one byte per Read splits the BOM across calls
	rows, err := ReadRows(iotest.OneByteReader(strings.NewReader(raw)))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"고객명", "연락처"}, rows[0])
	assert.Equal(t, "김철수", rows[1][0])
}

func TestRoundTrip(t *testing.T) {
	policy := finance.DefaultPolicy()
	original := models.Booking{
		ID: "orig", Customer: "윤서연", Phone: "010-9999-0000", Address: "울산 중구",
		Type: models.TypeWallMounted, Qty: 1, Scope: models.ScopeIndoor,
		BookDate: "2024-06-18", BookTime: "11:30", Meridiem: models.MeridiemAM,
		Contractor: models.ContractorInHouse, CommissionRate: "0",
		PriceTotal: "150000", Paid: models.PaidIncomplete,
	}

	var buf bytes.Buffer
	require.NoError(t, ExportBookings(&buf, []models.Booking{original}, policy))

	rows, err := ReadRows(&buf)
	require.NoError(t, err)

	back := MapRows(rows, importNow, seqIDs())
	require.Len(t, back, 1)

	got := back[0]
	assert.Equal(t, original.Customer, got.Customer)
	assert.Equal(t, original.Phone, got.Phone)
	assert.Equal(t, original.BookDate, got.BookDate)
	assert.Equal(t, original.BookTime, got.BookTime)
	assert.Equal(t, original.Meridiem, got.Meridiem)
	// numeric value survives even if formatting differs
	assert.Equal(t, finance.ParseMoney(original.PriceTotal), finance.ParseMoney(got.PriceTotal))
	assert.NotEqual(t, original.ID, got.ID, "import always assigns fresh ids")
}
