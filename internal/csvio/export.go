package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"itscare/internal/finance"
	"itscare/internal/models"
	"itscare/internal/summary"
)

// utf8BOM makes spreadsheet applications detect the encoding; the
// files are meant to be opened in Excel, not just re-imported.
const utf8BOM = "\uFEFF"

// ExportHeaders is the fixed column set of the full export, in the
// fixed order the import side maps back from.
var ExportHeaders = []string{
	"고객명", "연락처", "주소", "업종", "모델", "종류", "대수", "범위",
	"예약일", "시간", "담당기사", "도급업체", "수수료율", "총금액", "수수료", "정산금액", "결제", "비고",
}

// ExportBookings writes the full booking export: one row per booking
// with the computed financial fields inlined. An undetermined fee/net
// becomes an empty cell. Memo newlines are flattened to spaces so the
// row stays one line.
func ExportBookings(w io.Writer, bookings []models.Booking, policy finance.CommissionPolicy) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(ExportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range bookings {
		f := policy.Calculate(b)
		row := []string{
			b.Customer,
			b.Phone,
			b.Address,
			b.Group,
			b.Model,
			string(b.Type),
			strconv.Itoa(b.Qty),
			string(b.Scope),
			b.BookDate,
			b.ScheduleLabel(),
			b.Engineer,
			b.Contractor,
			b.CommissionRate,
			strconv.FormatInt(f.Total, 10),
			optionalAmount(f.Fee),
			optionalAmount(f.Net),
			string(b.Paid),
			flattenMemo(b.Memo),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportGroupSummary writes one monthly breakdown (contractor or
// engineer buckets) with the given group label as the first header.
func ExportGroupSummary(w io.Writer, label string, buckets []summary.GroupStats) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write([]string{label, "건수", "총매출", "수수료", "정산액", "미확정건"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range buckets {
		row := []string{
			b.Key,
			strconv.Itoa(b.Count),
			strconv.FormatInt(b.Sales, 10),
			strconv.FormatInt(b.Fee, 10),
			strconv.FormatInt(b.Net, 10),
			strconv.Itoa(b.Unknown),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func optionalAmount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func flattenMemo(memo string) string {
	memo = strings.ReplaceAll(memo, "\r\n", " ")
	return strings.ReplaceAll(memo, "\n", " ")
}
