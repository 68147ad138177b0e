package http

import (
	"fmt"
	"net/http"

	"hearth/internal/core"
)

type createTemplateRequest struct {
	MemberID    string `json:"member_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Every       string `json:"every"`
	StartsOn    string `json:"starts_on"`
}

func (req createTemplateRequest) toTemplate(householdID string) (core.RecurringTemplate, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("invalid amount %q", req.Amount)
	}

	startsOn, err := core.ParseDate(req.StartsOn)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("invalid starts_on %q (want YYYY-MM-DD)", req.StartsOn)
	}

	return core.RecurringTemplate{
		HouseholdID: householdID,
		MemberID:    sanitizeInput(req.MemberID),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Type:        core.ExpenseType(req.Type),
		Category:    sanitizeInput(req.Category),
		Every:       core.Recurrence(req.Every),
		StartsOn:    startsOn,
		Active:      true,
	}, nil
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := req.toTemplate(s.householdID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.records.CreateTemplate(ctx, tmpl)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		ID int64 `json:"id"`
	}{id})
}
