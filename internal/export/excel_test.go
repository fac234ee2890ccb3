package export

import (
	"os"
	"testing"
	"time"

	"itscare/internal/finance"
	"itscare/internal/models"
	"itscare/internal/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthFixture() ([]models.Booking, summary.Monthly) {
	bookings := []models.Booking{
		{ID: "b-1", Customer: "김철수", Phone: "010-1111-2222", BookDate: "2025-07-10", PriceTotal: "150000", Contractor: models.ContractorIkkeulim, Engineer: "박준호", CreatedAt: time.Now()},
		{ID: "b-2", Customer: "이영희", Phone: "010-3333-4444", BookDate: "2025-07-12", PriceTotal: "90000", Contractor: models.ContractorInHouse, Engineer: "박준호", CreatedAt: time.Now()},
		{ID: "b-3", Customer: "최민수", Phone: "010-5555-6666", BookDate: "2025-08-01", PriceTotal: "120000", CreatedAt: time.Now()},
	}
	for i := range bookings {
		bookings[i].Normalize()
	}
	monthly := summary.Summarize(bookings, "2025-07", finance.DefaultPolicy())
	return bookings, monthly
}

func TestMonthlyWorkbookSheets(t *testing.T) {
	bookings, monthly := monthFixture()

	f, err := MonthlyWorkbook(bookings, monthly, finance.DefaultPolicy())
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "예약목록")
	assert.Contains(t, sheets, "정산요약")
	assert.NotContains(t, sheets, "Sheet1")
}

func TestMonthlyWorkbookFiltersToMonth(t *testing.T) {
	bookings, monthly := monthFixture()

	f, err := MonthlyWorkbook(bookings, monthly, finance.DefaultPolicy())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("예약목록")
	require.NoError(t, err)
	// title + header + two July bookings; the August one is excluded
	require.Len(t, rows, 4)
	assert.Equal(t, "김철수", rows[2][0])
	assert.Equal(t, "이영희", rows[3][0])
}

func TestMonthlyWorkbookFinancialColumns(t *testing.T) {
	bookings, monthly := monthFixture()

	f, err := MonthlyWorkbook(bookings, monthly, finance.DefaultPolicy())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("예약목록")
	require.NoError(t, err)

	// 150000 at the 이끌림 default 30% rate
	assert.Equal(t, "150000", rows[2][13])
	assert.Equal(t, "45000", rows[2][14])
	assert.Equal(t, "105000", rows[2][15])
}

func TestMonthlyWorkbookSummaryTotals(t *testing.T) {
	bookings, monthly := monthFixture()

	f, err := MonthlyWorkbook(bookings, monthly, finance.DefaultPolicy())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("정산요약")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, []string{"전체", "2", "240000", "45000", "195000"}, rows[2][:5])
}

func TestSaveMonthlyWritesFile(t *testing.T) {
	dir := t.TempDir()
	bookings, monthly := monthFixture()

	path, err := SaveMonthly(dir, bookings, monthly, finance.DefaultPolicy())
	require.NoError(t, err)
	assert.FileExists(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Contains(t, path, "settlement_2025-07.xlsx")
}
