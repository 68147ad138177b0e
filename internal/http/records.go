package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hearth/internal/core"
	"hearth/internal/ledger"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type createRecordRequest struct {
	MemberID    string `json:"member_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

func (req createRecordRequest) toRecord(householdID string) (core.Record, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Record{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", req.Date)
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("invalid amount %q", req.Amount)
	}

	return core.Record{
		HouseholdID: householdID,
		MemberID:    sanitizeInput(req.MemberID),
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Type:        core.ExpenseType(req.Type),
		Category:    sanitizeInput(req.Category),
	}, nil
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	householdID := s.householdID(r)
	rec, err := req.toRecord(householdID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.records.CreateRecord(ctx, rec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateReports(householdID)
	s.structured.LogRecordCreated(ctx, householdID, rec.Description, rec.Amount.Cents, string(rec.Type), rec.Category)

	rec.ID = id
	writeJSON(w, http.StatusCreated, recordView(rec))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := ParseReportQuery(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	householdID := s.householdID(r)
	records, err := s.store.RecordsInRange(ctx, householdID, q.Window.Start, q.Window.End, q.MemberIDs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list records", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	views := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView(rec))
	}

	writeJSON(w, http.StatusOK, struct {
		Window  windowJSON   `json:"window"`
		Records []recordJSON `json:"records"`
	}{windowView(q.Window), views})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	householdID := s.householdID(r)
	if err := s.records.DeleteRecord(ctx, householdID, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.ErrorContext(ctx, "Failed to delete record", "record_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	s.invalidateReports(householdID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	householdID := s.householdID(r)
	members, err := s.store.Members(ctx, householdID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list members", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	views := make([]rosterMemberJSON, 0, len(members))
	for _, m := range members {
		views = append(views, rosterMemberJSON{ID: m.ID, DisplayName: m.DisplayName, Role: m.Role})
	}

	writeJSON(w, http.StatusOK, struct {
		Members []rosterMemberJSON `json:"members"`
	}{views})
}

// decodeBody reads a JSON body with a size cap and strict field checks.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
