package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/metrics"
	"predial/internal/store"
)

const maxBodyBytes = 1 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "read request body")
		return nil, false
	}
	return body, true
}

// respondProperty writes a property in the wire document shape, the same
// shape request bodies use.
func respondProperty(w http.ResponseWriter, status int, p core.Property) {
	data, err := store.EncodeProperty(p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode property")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// handleListProperties lists the portfolio with per-row derived fields for
// the selected year. Optional filters: status, city and debtors=true.
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.portfolio.ListProperties(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List properties failed", log.FieldError, err)
		respondServiceError(w, err)
		return
	}

	year := parseYearParam(r)
	q := r.URL.Query()
	statusFilter := strings.TrimSpace(q.Get("status"))
	cityFilter := core.NormalizeCity(q.Get("city"))
	debtorsOnly := q.Get("debtors") == "true"

	docs := make([]map[string]any, 0, len(props))
	for _, p := range props {
		status := core.ResolvePropertyStatus(p, year)
		debtor := core.HasPriorDebt(p, year)

		if statusFilter != "" && !status.Is(core.Status(statusFilter)) {
			continue
		}
		if cityFilter != "" && core.NormalizeCity(p.City) != cityFilter {
			continue
		}
		if debtorsOnly && !debtor {
			continue
		}

		data, err := store.EncodeProperty(p)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "encode property")
			return
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			respondError(w, http.StatusInternalServerError, "encode property")
			return
		}
		doc["status"] = string(status)
		doc["hasPriorDebt"] = debtor
		docs = append(docs, doc)
	}
	respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolio.GetProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondProperty(w, http.StatusOK, p)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	p, err := store.DecodeProperty(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed property document")
		return
	}
	p.ID = ""
	s.saveAndRespond(w, r, p, http.StatusCreated)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.portfolio.GetProperty(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	p, err := store.DecodeProperty(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed property document")
		return
	}
	p.ID = id
	s.saveAndRespond(w, r, p, http.StatusOK)
}

func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, p core.Property, status int) {
	p.Name = sanitizeInput(p.Name)
	p.City = sanitizeInput(p.City)
	p.State = sanitizeInput(p.State)
	p.LastUpdated = time.Now().Format("02/01/2006")

	id, err := s.portfolio.SaveProperty(r.Context(), p)
	if err != nil {
		metrics.ObservePropertySave("error")
		s.logger.ErrorContext(r.Context(), "Property save failed",
			log.FieldRequestID, log.RequestID(r.Context()),
			log.FieldPropertyID, p.ID, log.FieldError, err)
		respondServiceError(w, err)
		return
	}
	metrics.ObservePropertySave("ok")
	s.invalidateDerived()

	saved, err := s.portfolio.GetProperty(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondProperty(w, status, saved)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.portfolio.DeleteProperty(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceUnits(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		Year  store.FlexInt   `json:"year"`
		Units json.RawMessage `json:"units"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	units, err := store.DecodeUnits(req.Units)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed units array")
		return
	}

	p, err := s.portfolio.ReplaceUnits(r.Context(), r.PathValue("id"), int(req.Year), units)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateDerived()
	respondProperty(w, http.StatusOK, p)
}

func (s *Server) handleReplaceTenants(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		Year    store.FlexInt   `json:"year"`
		Tenants json.RawMessage `json:"tenants"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	tenants, err := store.DecodeTenants(req.Tenants)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed tenants array")
		return
	}

	p, err := s.portfolio.ReplaceTenants(r.Context(), r.PathValue("id"), int(req.Year), tenants)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateDerived()
	respondProperty(w, http.StatusOK, p)
}

func (s *Server) handleReplaceHistory(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	records, err := store.DecodeRecords(req.Records)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed records array")
		return
	}

	p, err := s.portfolio.ReplaceHistory(r.Context(), r.PathValue("id"), records)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateDerived()
	respondProperty(w, http.StatusOK, p)
}

func (s *Server) handleSetSingleTenant(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolio.SetSingleTenant(r.Context(), r.PathValue("id"), r.PathValue("tenantId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateDerived()
	respondProperty(w, http.StatusOK, p)
}

type apportionmentRow struct {
	TenantID   string  `json:"tenantId"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

func (s *Server) handleApportionment(w http.ResponseWriter, r *http.Request) {
	year := parseYearParam(r)
	rows, err := s.portfolio.Apportionment(r.Context(), r.PathValue("id"), year)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := struct {
		Year int                `json:"year"`
		Rows []apportionmentRow `json:"rows"`
	}{Year: year, Rows: make([]apportionmentRow, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, apportionmentRow{
			TenantID:   row.TenantID,
			Name:       row.Name,
			Percentage: row.Percentage,
			Amount:     row.Amount,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
