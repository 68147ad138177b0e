package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hearth/internal/config"
	"hearth/internal/core"
	"hearth/internal/ledger"
	"hearth/internal/log"
	"hearth/internal/memory"
	"hearth/internal/services"
)

const testHousehold = "hh-test"

func newTestServer(t *testing.T) (*Server, ledger.Store) {
	t.Helper()

	store := memory.NewStore()
	err := store.EnsureHousehold(context.Background(), testHousehold, "Test Household", []core.Member{
		{ID: "alice", HouseholdID: testHousehold, DisplayName: "Alice"},
		{ID: "bob", HouseholdID: testHousehold, DisplayName: "Bob"},
	})
	if err != nil {
		t.Fatalf("EnsureHousehold() error = %v", err)
	}

	cfg := &config.Config{
		Port:               "8082",
		RateLimitPerMinute: 10000,
		CacheEntries:       16,
		CacheTTL:           time.Minute,
		DefaultHouseholdID: testHousehold,
	}

	logger := log.New(log.DefaultConfig())
	records := services.NewRecordService(store, nil)
	reports := services.NewReportService(store)

	srv := NewServer(cfg, store, records, reports, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func createRecord(t *testing.T, srv *Server, member, date, amount, expenseType, category string) int64 {
	t.Helper()

	body := fmt.Sprintf(`{"member_id":%q,"date":%q,"description":"test expense","amount":%q,"type":%q,"category":%q}`,
		member, date, amount, expenseType, category)
	rec := doRequest(t, srv, http.MethodPost, "/records", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create record status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp recordJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_CreateAndListRecords(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, "alice", "2026-01-10", "123.45", "need", "Groceries")
	createRecord(t, srv, "bob", "2026-01-12", "50.00", "want", "Cinema")

	rec := doRequest(t, srv, http.MethodGet, "/records?start=2026-01-01&end=2026-01-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Records []recordJSON `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("listed %d records, want 2", len(resp.Records))
	}
	if resp.Records[0].Amount != "123.45" {
		t.Errorf("amount = %q, want 123.45", resp.Records[0].Amount)
	}
}

func TestServer_ListRecordsMemberFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, "alice", "2026-01-10", "10.00", "need", "")
	createRecord(t, srv, "bob", "2026-01-11", "20.00", "want", "")

	rec := doRequest(t, srv, http.MethodGet, "/records?start=2026-01-01&end=2026-01-31&members=bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp struct {
		Records []recordJSON `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].MemberID != "bob" {
		t.Errorf("filtered records = %+v, want bob only", resp.Records)
	}
}

func TestServer_CreateRecordValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "bad expense type",
			body: `{"member_id":"alice","date":"2026-01-10","description":"x","amount":"10.00","type":"luxury"}`,
		},
		{
			name: "bad amount",
			body: `{"member_id":"alice","date":"2026-01-10","description":"x","amount":"-5","type":"need"}`,
		},
		{
			name: "bad date",
			body: `{"member_id":"alice","date":"10/01/2026","description":"x","amount":"10.00","type":"need"}`,
		},
		{
			name: "missing description",
			body: `{"member_id":"alice","date":"2026-01-10","description":"","amount":"10.00","type":"need"}`,
		},
		{
			name: "unknown field",
			body: `{"member_id":"alice","date":"2026-01-10","description":"x","amount":"10.00","type":"need","color":"red"}`,
		},
		{
			name: "not json",
			body: `date=2026-01-10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/records", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_DeleteRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	id := createRecord(t, srv, "alice", "2026-01-10", "10.00", "need", "")

	rec := doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/records/%d", id), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/records/%d", id), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/records/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", rec.Code)
	}
}

func TestServer_SnapshotReport(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, "alice", "2026-01-10", "500.00", "need", "Rent")
	createRecord(t, srv, "bob", "2026-01-15", "300.00", "want", "Travel")
	createRecord(t, srv, "alice", "2026-01-20", "200.00", "savings", "ETF")

	incomeBody := `{"member_id":"alice","name":"Salary","amount":"2000.00","recurrence":"monthly","starts_on":"2025-01-01"}`
	if rec := doRequest(t, srv, http.MethodPost, "/income-sources", incomeBody); rec.Code != http.StatusCreated {
		t.Fatalf("create income status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec := doRequest(t, srv, http.MethodGet, "/reports/snapshot?start=2026-01-01&end=2026-01-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp snapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	if resp.TotalSpent != "1000.00" {
		t.Errorf("total spent = %q, want 1000.00", resp.TotalSpent)
	}
	if resp.NeedsPercent != 50.0 || resp.WantsPercent != 30.0 || resp.SavingsPercent != 20.0 {
		t.Errorf("shares = %.1f/%.1f/%.1f, want 50/30/20",
			resp.NeedsPercent, resp.WantsPercent, resp.SavingsPercent)
	}
	if resp.SavingsRate != 50.0 {
		t.Errorf("savings rate = %.1f, want 50.0", resp.SavingsRate)
	}
	if len(resp.ByUser) != 2 {
		t.Errorf("by_user has %d entries, want full roster of 2", len(resp.ByUser))
	}
	if len(resp.ByCategory) == 0 || resp.ByCategory[0].Category != "Rent" {
		t.Errorf("by_category head = %+v, want Rent first", resp.ByCategory)
	}
}

func TestServer_SnapshotCacheInvalidatedOnWrite(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, "alice", "2026-01-10", "100.00", "need", "")

	const target = "/reports/snapshot?start=2026-01-01&end=2026-01-31"
	rec := doRequest(t, srv, http.MethodGet, target, "")
	var first snapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if first.TotalSpent != "100.00" {
		t.Fatalf("total spent = %q, want 100.00", first.TotalSpent)
	}

	// The write must push the cached report out.
	createRecord(t, srv, "bob", "2026-01-12", "50.00", "want", "")

	rec = doRequest(t, srv, http.MethodGet, target, "")
	var second snapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if second.TotalSpent != "150.00" {
		t.Errorf("total spent after write = %q, want 150.00", second.TotalSpent)
	}
}

func TestServer_TrendReportCustomWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, "alice", "2026-01-12", "25.00", "need", "")
	createRecord(t, srv, "alice", "2026-01-13", "75.00", "want", "")

	rec := doRequest(t, srv, http.MethodGet, "/reports/trend?start=2026-01-10&end=2026-01-15", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trend status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp trendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if resp.Kind != "bucketed" || resp.Granularity != "day" {
		t.Errorf("kind/granularity = %s/%s, want bucketed/day", resp.Kind, resp.Granularity)
	}
	if len(resp.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(resp.Points))
	}
	if resp.Points[0].Label != "Mon 12" || resp.Points[0].Amount != "25.00" {
		t.Errorf("first point = %+v, want Mon 12 / 25.00", resp.Points[0])
	}
}

func TestServer_TrendRejectsMemberFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/reports/trend?period=week&members=alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServer_CreateTemplate(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"member_id":"alice","description":"Rent","amount":"900.00","type":"need","category":"Housing","every":"monthly","starts_on":"2026-01-01"}`
	rec := doRequest(t, srv, http.MethodPost, "/templates", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template status = %d, body = %s", rec.Code, rec.Body.String())
	}

	oneTime := `{"member_id":"alice","description":"Rent","amount":"900.00","type":"need","category":"Housing","every":"one_time","starts_on":"2026-01-01"}`
	rec = doRequest(t, srv, http.MethodPost, "/templates", oneTime)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("one_time template status = %d, want 400", rec.Code)
	}
}

func TestServer_ListMembers(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/members", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("members status = %d", rec.Code)
	}

	var resp struct {
		Members []rosterMemberJSON `json:"members"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(resp.Members) != 2 {
		t.Errorf("members = %d, want 2", len(resp.Members))
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3)

	for i := 0; i < 3; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Errorf("fourth request should be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Errorf("other clients must not share the budget")
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:9999",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer ignored",
			remoteAddr: "203.0.113.7:9999",
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy honored",
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			want:       "203.0.113.50",
		},
		{
			name:       "real ip from trusted proxy",
			remoteAddr: "192.168.1.10:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			want:       "198.51.100.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	metrics := &securityMetrics{}

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	if detectSuspiciousRequest(req, metrics) {
		t.Errorf("plain request flagged as suspicious")
	}

	req = httptest.NewRequest(http.MethodGet, "/..%2f..%2fetc/passwd", nil)
	req.URL.Path = "/../../etc/passwd"
	if !detectSuspiciousRequest(req, metrics) {
		t.Errorf("path traversal not flagged")
	}

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	if !detectSuspiciousRequest(req, metrics) {
		t.Errorf("scanner user agent not flagged")
	}
}
