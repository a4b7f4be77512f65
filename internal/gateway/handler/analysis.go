package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codegate/internal/analysis"
)

// AnalysisService is the slice of the pipeline service the HTTP layer needs.
type AnalysisService interface {
	RunAnalysis(ctx context.Context, taskID, userID int64) (analysis.Report, error)
	ListReports(ctx context.Context, taskID, userID int64) ([]analysis.Report, error)
	ListDefects(ctx context.Context, reportID, userID int64) ([]analysis.Defect, error)
}

// AnalysisHandler exposes the three inbound operations as JSON endpoints.
// Authentication happens upstream; the acting user arrives in the X-User-ID
// header set by the auth layer.
type AnalysisHandler struct {
	svc    AnalysisService
	logger *slog.Logger
}

func NewAnalysisHandler(svc AnalysisService, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{svc: svc, logger: logger}
}

func (h *AnalysisHandler) HandleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.RunAnalysis(r.Context(), taskID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *AnalysisHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	reports, err := h.svc.ListReports(r.Context(), taskID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []analysis.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *AnalysisHandler) HandleListDefects(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(w, r, "reportID")
	if !ok {
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	defects, err := h.svc.ListDefects(r.Context(), reportID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if defects == nil {
		defects = []analysis.Defect{}
	}
	writeJSON(w, http.StatusOK, defects)
}

func (h *AnalysisHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": publicMessage(err, status)})
}

func statusFor(err error) int {
	switch analysis.KindOf(err) {
	case analysis.KindValidation:
		return http.StatusBadRequest
	case analysis.KindNotFound:
		return http.StatusNotFound
	case analysis.KindAuthorization:
		return http.StatusForbidden
	case analysis.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal error chains (and anything they might carry)
// out of response bodies.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	var e *analysis.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func actingUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get("X-User-ID")), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "X-User-ID header is required"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
