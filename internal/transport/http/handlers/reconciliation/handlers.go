package reconciliationhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/reconciliation"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *reconciliation.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *reconciliation.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reconciliation", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReconciliationRead, h.Perms)).Get("/report", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermReconciliationRead, h.Perms)).Get("/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.PermReconciliationSync, h.Perms)).Post("/sync", h.handleSync)
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	report, err := h.Service.BuildReport(r.Context(), user.TenantID)
	if err != nil {
		if errors.Is(err, reconciliation.ErrNeverSynced) {
			api.Fail(w, http.StatusConflict, "never_synced", "no HRMS snapshot available, run a sync first", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build reconciliation report", middleware.GetRequestID(r.Context()))
		return
	}

	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="reconciliation.csv"`)
		if err := reconciliation.WriteCSV(w, report); err != nil {
			slog.Warn("reconciliation csv export failed", "err", err)
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="reconciliation.pdf"`)
		if err := reconciliation.WritePDF(w, report); err != nil {
			slog.Warn("reconciliation pdf export failed", "err", err)
		}
	default:
		api.Success(w, report, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	syncedAt, err := h.Service.LastSyncedAt(r.Context(), user.TenantID)
	if err != nil {
		if errors.Is(err, reconciliation.ErrNeverSynced) {
			api.Success(w, map[string]any{"synced": false}, middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "status_failed", "failed to read sync status", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"synced": true, "syncedAt": syncedAt}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.Sync(r.Context(), user.TenantID)
	if err != nil {
		if errors.Is(err, reconciliation.ErrHRMSNotConfigured) {
			api.Fail(w, http.StatusConflict, "hrms_not_configured", "no HRMS endpoint is configured for this deployment", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadGateway, "sync_failed", "failed to sync from HRMS", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "reconciliation.sync", "hrms_snapshot", user.TenantID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit reconciliation.sync failed", "err", err)
	}

	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
