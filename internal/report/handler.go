package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
)

// ArchivePath is where Handler is mounted.
const ArchivePath = "/reports/archive.pdf"

// ArchiveLoader loads one month of a group on behalf of the caller in ctx.
// Errors carry a Connect code.
type ArchiveLoader interface {
	LoadArchive(ctx context.Context, groupID string, month models.Month) (*models.Group, calculator.Archive, error)
}

// Handler serves GET /reports/archive.pdf?group_id=&year=&month=.
type Handler struct {
	loader   ArchiveLoader
	currency string
}

func NewHandler(loader ArchiveLoader, currency string) *Handler {
	return &Handler{loader: loader, currency: currency}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	groupID := strings.TrimSpace(q.Get("group_id"))
	if groupID == "" {
		http.Error(w, "group_id is required", http.StatusBadRequest)
		return
	}
	year, errY := strconv.Atoi(q.Get("year"))
	month, errM := strconv.Atoi(q.Get("month"))
	if errY != nil || errM != nil {
		http.Error(w, "year and month must be numbers", http.StatusBadRequest)
		return
	}
	m, err := models.NewMonth(year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	group, archive, err := h.loader.LoadArchive(r.Context(), groupID, m)
	if err != nil {
		status := httpStatus(connect.CodeOf(err))
		if status == http.StatusInternalServerError {
			slog.Error("Archive report failed", "group_id", groupID, "month", m.Key(), "error", err)
			http.Error(w, "internal error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	pdf, err := BuildArchivePDF(group, archive, h.currency)
	if err != nil {
		slog.Error("Archive report failed", "group_id", groupID, "month", m.Key(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.pdf", group.UniqueName, m.Key())))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if _, err := w.Write(pdf); err != nil {
		slog.Debug("Archive report write failed", "error", err)
	}
}

func httpStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeCanceled, connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
