package report

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

func testArchive() (*models.Group, calculator.Archive) {
	group := &models.Group{
		ID:          "g1",
		UniqueName:  "hall-4",
		DisplayName: "Hall 4 Mess",
		Type:        models.GroupTypeSmartMeal,
		ManagerID:   "m",
	}
	jan := models.NewDate(2025, time.January, 10)
	snap := models.Snapshot{
		Group:   *group,
		Members: []models.Member{{UserID: "m", Name: "Manager"}, {UserID: "a", Name: "A"}},
		Expenses: []models.Expense{
			{ID: "e1", UserID: "m", Amount: money.MustParse("400"), Category: "Bazar", Date: jan},
		},
		Funds: []models.Fund{{ID: "f1", UserID: "a", Amount: money.MustParse("500"), Date: jan}},
	}
	return group, calculator.ComputeArchive(snap, models.Month{Year: 2025, Month: time.January}, calculator.Options{})
}

func TestBuildArchivePDF(t *testing.T) {
	group, archive := testArchive()

	pdf, err := BuildArchivePDF(group, archive, "BDT")
	if err != nil {
		t.Fatalf("BuildArchivePDF() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", pdf[:min(len(pdf), 8)])
	}
}

func TestBuildArchivePDFEmptyMonth(t *testing.T) {
	group, _ := testArchive()
	archive := calculator.Archive{Month: models.Month{Year: 2025, Month: time.March}}

	pdf, err := BuildArchivePDF(group, archive, "BDT")
	if err != nil {
		t.Fatalf("BuildArchivePDF() error = %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty output")
	}
}

type fakeLoader struct {
	err       error
	gotGroup  string
	gotMonth  models.Month
	callCount int
}

func (f *fakeLoader) LoadArchive(_ context.Context, groupID string, month models.Month) (*models.Group, calculator.Archive, error) {
	f.callCount++
	f.gotGroup = groupID
	f.gotMonth = month
	if f.err != nil {
		return nil, calculator.Archive{}, f.err
	}
	group, archive := testArchive()
	return group, archive, nil
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		query      string
		loaderErr  error
		wantStatus int
		wantCalls  int
	}{
		{name: "ok", method: http.MethodGet, query: "group_id=g1&year=2025&month=1", wantStatus: http.StatusOK, wantCalls: 1},
		{name: "post rejected", method: http.MethodPost, query: "group_id=g1&year=2025&month=1", wantStatus: http.StatusMethodNotAllowed},
		{name: "missing group", method: http.MethodGet, query: "year=2025&month=1", wantStatus: http.StatusBadRequest},
		{name: "bad month", method: http.MethodGet, query: "group_id=g1&year=2025&month=13", wantStatus: http.StatusBadRequest},
		{name: "non numeric year", method: http.MethodGet, query: "group_id=g1&year=abc&month=1", wantStatus: http.StatusBadRequest},
		{
			name: "not a member", method: http.MethodGet, query: "group_id=g1&year=2025&month=1",
			loaderErr:  connect.NewError(connect.CodePermissionDenied, errors.New("not a member of this group")),
			wantStatus: http.StatusForbidden, wantCalls: 1,
		},
		{
			name: "unknown group", method: http.MethodGet, query: "group_id=g1&year=2025&month=1",
			loaderErr:  connect.NewError(connect.CodeNotFound, errors.New("not found")),
			wantStatus: http.StatusNotFound, wantCalls: 1,
		},
		{
			name: "store failure", method: http.MethodGet, query: "group_id=g1&year=2025&month=1",
			loaderErr:  errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError, wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{err: tt.loaderErr}
			h := NewHandler(loader, "BDT")

			req := httptest.NewRequest(tt.method, ArchivePath+"?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if loader.callCount != tt.wantCalls {
				t.Errorf("loader calls = %d, want %d", loader.callCount, tt.wantCalls)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error leaked to client")
			}
		})
	}
}

func TestHandlerHeaders(t *testing.T) {
	loader := &fakeLoader{}
	h := NewHandler(loader, "BDT")

	req := httptest.NewRequest(http.MethodGet, ArchivePath+"?group_id=%20g1%20&year=2025&month=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="hall-4-2025-01.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if loader.gotGroup != "g1" {
		t.Errorf("group = %q, want trimmed g1", loader.gotGroup)
	}
	if loader.gotMonth != (models.Month{Year: 2025, Month: time.January}) {
		t.Errorf("month = %v", loader.gotMonth)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}
