package http

import (
	"fmt"
	"net/http"

	"hearth/internal/core"
)

type createIncomeSourceRequest struct {
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Recurrence string `json:"recurrence"`
	StartsOn   string `json:"starts_on"`
	EndsOn     string `json:"ends_on"`
}

func (req createIncomeSourceRequest) toSource(householdID string) (core.IncomeSource, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("invalid amount %q", req.Amount)
	}

	startsOn, err := core.ParseDate(req.StartsOn)
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("invalid starts_on %q (want YYYY-MM-DD)", req.StartsOn)
	}

	var endsOn core.Date
	if req.EndsOn != "" {
		endsOn, err = core.ParseDate(req.EndsOn)
		if err != nil {
			return core.IncomeSource{}, fmt.Errorf("invalid ends_on %q (want YYYY-MM-DD)", req.EndsOn)
		}
	}

	return core.IncomeSource{
		HouseholdID: householdID,
		MemberID:    sanitizeInput(req.MemberID),
		Name:        sanitizeInput(req.Name),
		Amount:      core.Money{Cents: cents},
		Recurrence:  core.Recurrence(req.Recurrence),
		Active:      true,
		StartsOn:    startsOn,
		EndsOn:      endsOn,
	}, nil
}

func (s *Server) handleCreateIncomeSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createIncomeSourceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	householdID := s.householdID(r)
	src, err := req.toSource(householdID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.records.CreateIncomeSource(ctx, src)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateReports(householdID)

	src.ID = id
	writeJSON(w, http.StatusCreated, incomeSourceView(src))
}

func (s *Server) handleListIncomeSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	householdID := s.householdID(r)
	sources, err := s.store.IncomeSources(ctx, householdID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list income sources", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list income sources")
		return
	}

	views := make([]incomeSourceJSON, 0, len(sources))
	for _, src := range sources {
		views = append(views, incomeSourceView(src))
	}

	writeJSON(w, http.StatusOK, struct {
		Sources []incomeSourceJSON `json:"sources"`
	}{views})
}
