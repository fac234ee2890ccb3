package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"itscare/internal/config"
	"itscare/internal/database"
	"itscare/internal/export"
	"itscare/internal/listing"
	"itscare/internal/models"
	"itscare/internal/service"
)

// bookingView adds the computed settlement fields to the raw booking
// record for API responses.
type bookingView struct {
	models.Booking
	Total int64    `json:"total"`
	Rate  *float64 `json:"rate"`
	Fee   *int64   `json:"fee"`
	Net   *int64   `json:"net"`
}

func (s *HTTPServer) view(b models.Booking) bookingView {
	f := s.bookings.Policy().Calculate(b)
	return bookingView{Booking: b, Total: f.Total, Rate: f.Rate, Fee: f.Fee, Net: f.Net}
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodDelete:
		s.clearBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := listing.Criteria{
		Date:       listing.DateFilter(strings.TrimSpace(q.Get("date"))),
		Engineer:   strings.TrimSpace(q.Get("engineer")),
		Contractor: strings.TrimSpace(q.Get("contractor")),
		Search:     strings.TrimSpace(q.Get("q")),
		Sort:       listing.SortKey(strings.TrimSpace(q.Get("sort"))),
	}

	bookings, err := s.bookings.ListBookings(r.Context(), criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list bookings failed")
		return
	}

	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, s.view(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": views, "count": len(views)})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var b models.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.CreateBooking(r.Context(), &b); err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "create booking failed")
		return
	}
	writeJSON(w, http.StatusCreated, s.view(b))
}

func (s *HTTPServer) clearBookings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "all" {
		writeError(w, http.StatusBadRequest, "clearing all bookings requires confirm=all")
		return
	}
	if err := s.bookings.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "clear bookings failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	if action == "paid" {
		s.togglePaid(w, r, id)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getBooking(w, r, id)
	case http.MethodPut:
		s.updateBooking(w, r, id)
	case http.MethodDelete:
		s.deleteBooking(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, id string) {
	b, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(*b))
}

func (s *HTTPServer) updateBooking(w http.ResponseWriter, r *http.Request, id string) {
	var b models.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b.ID = id

	if err := s.bookings.UpdateBooking(r.Context(), &b); err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(b))
}

func (s *HTTPServer) deleteBooking(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.bookings.DeleteBooking(r.Context(), id); err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) togglePaid(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	paid, err := s.bookings.TogglePaid(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "paid": paid})
}

func (s *HTTPServer) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	engineers, contractors, err := s.bookings.Filters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list filters failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engineers":   engineers,
		"contractors": contractors,
	})
}

func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month, ok := s.targetMonth(w, r)
	if !ok {
		return
	}

	monthly, err := s.bookings.MonthlySummary(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

func (s *HTTPServer) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	accepted, err := s.bookings.ImportCSV(r.Context(), r.Body)
	if err != nil {
		if errors.Is(err, service.ErrImportTooShort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "import failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"accepted": accepted})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("bookings_"+time.Now().Format("20060102")+".csv"))
	if err := s.bookings.ExportCSV(r.Context(), w); err != nil {
		if errors.Is(err, service.ErrNoBookings) {
			writeError(w, http.StatusNotFound, err.Error())
		}
		return
	}
}

func (s *HTTPServer) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month, ok := s.targetMonth(w, r)
	if !ok {
		return
	}

	by := service.GroupByContractor
	if r.URL.Query().Get("by") == string(service.GroupByEngineer) {
		by = service.GroupByEngineer
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("summary_%s_%s.csv", month, by)))
	if err := s.bookings.ExportGroupSummaryCSV(r.Context(), w, month, by); err != nil {
		if errors.Is(err, service.ErrNoBookings) {
			writeError(w, http.StatusNotFound, err.Error())
		}
		return
	}
}

func (s *HTTPServer) handleExportSettlement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month, ok := s.targetMonth(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), listing.Criteria{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list bookings failed")
		return
	}
	monthly, err := s.bookings.MonthlySummary(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}

	f, err := export.MonthlyWorkbook(bookings, *monthly, s.bookings.Policy())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "build workbook failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("settlement_%s.xlsx", month)))
	if err := f.Write(w); err != nil {
		s.logger.Warn().Err(err).Msg("write workbook response")
	}
}

// targetMonth resolves the month query param, defaulting to the
// current month. Writes the error response itself on a malformed value.
func (s *HTTPServer) targetMonth(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		return time.Now().Format("2006-01"), true
	}
	if !config.ValidMonth(month) {
		writeError(w, http.StatusBadRequest, "invalid month; expected YYYY-MM")
		return "", false
	}
	return month, true
}

func (s *HTTPServer) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "storage error")
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
