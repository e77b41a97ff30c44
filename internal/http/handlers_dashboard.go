package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"predial/internal/log"
	"predial/internal/metrics"
	"predial/internal/report"
	"predial/internal/store"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year := parseYearParam(r)
	key := strconv.Itoa(year)

	if d, ok := s.dashboardCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "Dashboard cache hit", log.FieldYear, year)
		respondJSON(w, http.StatusOK, d)
		return
	}

	d, err := s.reports.Dashboard(r.Context(), year)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard build failed",
			log.FieldYear, year, log.FieldError, err)
		respondServiceError(w, err)
		return
	}
	s.dashboardCache.Set(key, d)
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year := parseYearParam(r)
	rep, ok := s.yearlyReport(w, r, year)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondError(w, http.StatusServiceUnavailable, "report export not configured")
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		Year store.FlexInt `json:"year"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	year := int(req.Year)
	if year == 0 {
		year = parseYearParam(r)
	}

	rep, ok := s.yearlyReport(w, r, year)
	if !ok {
		return
	}

	if err := s.exporter.ExportYearly(r.Context(), rep); err != nil {
		metrics.ObserveReportExport("error")
		s.logger.ErrorContext(r.Context(), "Report export failed",
			log.FieldYear, year, log.FieldError, err)
		respondError(w, http.StatusBadGateway, "export failed")
		return
	}
	metrics.ObserveReportExport("ok")

	respondJSON(w, http.StatusOK, struct {
		Year int `json:"year"`
		Rows int `json:"rows"`
	}{Year: year, Rows: len(rep.Rows)})
}

// yearlyReport serves the per-year report from cache, building on miss. On
// failure it writes the error response and returns ok=false.
func (s *Server) yearlyReport(w http.ResponseWriter, r *http.Request, year int) (report.Yearly, bool) {
	key := strconv.Itoa(year)
	if rep, ok := s.reportCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "Report cache hit", log.FieldYear, year)
		return rep, true
	}

	rep, err := s.reports.Yearly(r.Context(), year)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Yearly report build failed",
			log.FieldYear, year, log.FieldError, err)
		respondServiceError(w, err)
		return report.Yearly{}, false
	}
	s.reportCache.Set(key, rep)
	return rep, true
}
