package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"itscare/internal/models"

	"github.com/google/uuid"
)

// minRowCells is the threshold under which an import row is considered
// truncated and skipped.
const minRowCells = 5

// ReadRows parses raw CSV text into cell rows, tolerating a leading
// BOM and ragged row lengths (exported files quote freely and users
// hand-edit them).
func ReadRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(&bomStripper{r: bufio.NewReader(r)})
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// MapRows converts parsed CSV rows (header row first) into bookings.
// Header cells are matched by substring containment, so decorated
// headers like "고객명(필수)" still map. Rows with fewer than five
// cells, or missing both name and phone, are skipped silently; the
// caller reports the accepted count. newID may be nil, in which case
// fresh uuids are assigned.
func MapRows(rows [][]string, now time.Time, newID func() string) []models.Booking {
	if len(rows) < 2 {
		return nil
	}
	if newID == nil {
		newID = uuid.NewString
	}

	headers := rows[0]
	cell := func(row []string, label string) string {
		for i, h := range headers {
			if strings.Contains(h, label) {
				if i < len(row) {
					return strings.TrimSpace(row[i])
				}
				return ""
			}
		}
		return ""
	}

	var bookings []models.Booking
	for _, row := range rows[1:] {
		if len(row) < minRowCells {
			continue
		}
		if cell(row, "고객명") == "" || cell(row, "연락처") == "" {
			continue
		}

		rawTime := cell(row, "시간")
		qty, _ := strconv.Atoi(cell(row, "대수"))

		b := models.Booking{
			ID:             newID(),
			Customer:       cell(row, "고객명"),
			Phone:          cell(row, "연락처"),
			Address:        cell(row, "주소"),
			Group:          cell(row, "업종"),
			Model:          cell(row, "모델"),
			Type:           models.EquipmentType(cell(row, "종류")),
			Qty:            qty,
			Scope:          models.CleaningScope(cell(row, "범위")),
			BookDate:       cell(row, "예약일"),
			BookTime:       splitTime(rawTime),
			Meridiem:       splitMeridiem(rawTime),
			Engineer:       cell(row, "담당기사"),
			Contractor:     cell(row, "도급업체"),
			CommissionRate: cell(row, "수수료율"),
			PriceTotal:     cell(row, "총금액"),
			Paid:           models.ParsePaidStatus(cell(row, "결제")),
			Memo:           cell(row, "비고"),
			CreatedAt:      now,
		}
		b.Normalize()
		bookings = append(bookings, b)
	}

	return bookings
}

// splitTime strips the meridiem markers out of a combined
// "오전/오후 HH:MM" cell, leaving the bare time (possibly empty).
func splitTime(raw string) string {
	s := strings.ReplaceAll(raw, string(models.MeridiemAM), "")
	s = strings.ReplaceAll(s, string(models.MeridiemPM), "")
	return strings.TrimSpace(s)
}

// splitMeridiem detects the PM marker anywhere in the combined cell;
// everything else counts as AM.
func splitMeridiem(raw string) models.Meridiem {
	if strings.Contains(raw, string(models.MeridiemPM)) {
		return models.MeridiemPM
	}
	return models.MeridiemAM
}

// bomStripper drops a UTF-8 BOM from the head of the stream if
// present. Buffering keeps the check correct even when the underlying
// reader hands out the BOM bytes one at a time.
type bomStripper struct {
	r       *bufio.Reader
	started bool
}

func (b *bomStripper) Read(p []byte) (int, error) {
	if !b.started {
		b.started = true
		if lead, err := b.r.Peek(3); err == nil && bytes.Equal(lead, []byte{0xEF, 0xBB, 0xBF}) {
			_, _ = b.r.Discard(3)
		}
	}
	return b.r.Read(p)
}
