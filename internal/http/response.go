package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hearth/internal/core"
	"hearth/internal/engine"
	"hearth/internal/services"
)

// Amounts cross the wire as decimal strings ("12.34") so clients never
// see float artifacts. Percentages stay numeric: they are already
// rounded to one decimal place by the engine.

type windowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
}

type memberJSON struct {
	MemberID     string         `json:"member_id"`
	DisplayName  string         `json:"display_name"`
	TotalSpent   string         `json:"total_spent"`
	NeedsTotal   string         `json:"needs_total"`
	WantsTotal   string         `json:"wants_total"`
	SavingsTotal string         `json:"savings_total"`
	TopCategory  string         `json:"top_category,omitempty"`
	Categories   []categoryJSON `json:"categories,omitempty"`
}

type incomeLineJSON struct {
	SourceID   int64  `json:"source_id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Recurrence string `json:"recurrence"`
	Monthly    string `json:"monthly"`
}

type snapshotResponse struct {
	Window windowJSON `json:"window"`

	TotalSpent    string `json:"total_spent"`
	MonthlyIncome string `json:"monthly_income"`
	NeedsTotal    string `json:"needs_total"`
	WantsTotal    string `json:"wants_total"`
	SavingsTotal  string `json:"savings_total"`

	NeedsPercent   float64 `json:"needs_percent"`
	WantsPercent   float64 `json:"wants_percent"`
	SavingsPercent float64 `json:"savings_percent"`
	SavingsRate    float64 `json:"savings_rate"`

	ByCategory []categoryJSON   `json:"by_category"`
	ByUser     []memberJSON     `json:"by_user"`
	Income     []incomeLineJSON `json:"income"`
}

type trendPointJSON struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type trendResponse struct {
	Window      windowJSON       `json:"window"`
	Kind        string           `json:"kind"`
	Granularity string           `json:"granularity,omitempty"`
	Points      []trendPointJSON `json:"points"`
}

func windowView(w engine.Window) windowJSON {
	return windowJSON{Start: w.Start.String(), End: w.End.String()}
}

func categoryViews(aggs []engine.CategoryAggregate) []categoryJSON {
	out := make([]categoryJSON, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, categoryJSON{
			Category: a.Category,
			Type:     string(a.Type),
			Amount:   a.Amount.String(),
		})
	}
	return out
}

func snapshotView(r services.SnapshotReport) snapshotResponse {
	resp := snapshotResponse{
		Window:         windowView(r.Window),
		TotalSpent:     r.Snapshot.TotalSpent.String(),
		MonthlyIncome:  r.Snapshot.MonthlyIncome.String(),
		NeedsTotal:     r.Snapshot.NeedsTotal.String(),
		WantsTotal:     r.Snapshot.WantsTotal.String(),
		SavingsTotal:   r.Snapshot.SavingsTotal.String(),
		NeedsPercent:   r.Snapshot.NeedsPercent,
		WantsPercent:   r.Snapshot.WantsPercent,
		SavingsPercent: r.Snapshot.SavingsPercent,
		SavingsRate:    r.Snapshot.SavingsRate,
		ByCategory:     categoryViews(r.Summary.ByCategory),
		ByUser:         make([]memberJSON, 0, len(r.Summary.ByUser)),
		Income:         make([]incomeLineJSON, 0, len(r.Income)),
	}

	for _, m := range r.Summary.ByUser {
		resp.ByUser = append(resp.ByUser, memberJSON{
			MemberID:     m.MemberID,
			DisplayName:  m.DisplayName,
			TotalSpent:   m.TotalSpent.String(),
			NeedsTotal:   m.NeedsTotal.String(),
			WantsTotal:   m.WantsTotal.String(),
			SavingsTotal: m.SavingsTotal.String(),
			TopCategory:  m.TopCategory,
			Categories:   categoryViews(m.Categories),
		})
	}

	for _, line := range r.Income {
		resp.Income = append(resp.Income, incomeLineJSON{
			SourceID:   line.SourceID,
			Name:       line.Name,
			Amount:     line.Amount.String(),
			Recurrence: string(line.Recurrence),
			Monthly:    line.Monthly.String(),
		})
	}

	return resp
}

func trendView(t engine.Trend, w engine.Window) trendResponse {
	resp := trendResponse{
		Window:      windowView(w),
		Kind:        string(t.Kind),
		Granularity: string(t.Granularity),
		Points:      make([]trendPointJSON, 0, len(t.Points)),
	}
	for _, p := range t.Points {
		resp.Points = append(resp.Points, trendPointJSON{
			Label:  p.Label,
			Amount: p.Amount.String(),
		})
	}
	return resp
}

type recordJSON struct {
	ID          int64  `json:"id"`
	MemberID    string `json:"member_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

func recordView(r core.Record) recordJSON {
	return recordJSON{
		ID:          r.ID,
		MemberID:    r.MemberID,
		Date:        r.Date.String(),
		Description: r.Description,
		Amount:      r.Amount.String(),
		Type:        string(r.Type),
		Category:    r.Category,
	}
}

type incomeSourceJSON struct {
	ID         int64  `json:"id"`
	MemberID   string `json:"member_id,omitempty"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Recurrence string `json:"recurrence"`
	Active     bool   `json:"active"`
	StartsOn   string `json:"starts_on"`
	EndsOn     string `json:"ends_on,omitempty"`
	Monthly    string `json:"monthly"`
}

func incomeSourceView(s core.IncomeSource) incomeSourceJSON {
	v := incomeSourceJSON{
		ID:         s.ID,
		MemberID:   s.MemberID,
		Name:       s.Name,
		Amount:     s.Amount.String(),
		Recurrence: string(s.Recurrence),
		Active:     s.Active,
		StartsOn:   s.StartsOn.String(),
		Monthly:    engine.MonthlyEquivalent(s.Amount, s.Recurrence).String(),
	}
	if !s.EndsOn.IsEmpty() {
		v.EndsOn = s.EndsOn.String()
	}
	return v
}

type rosterMemberJSON struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
