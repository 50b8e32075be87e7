package reportshandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/reports"
	"skillboard/internal/domain/skills"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Skills  *skills.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, skillsSvc *skills.Service, coreSvc *core.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Skills: skillsSvc, Core: coreSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/band-analysis/{employeeID}/{bandID}", h.handleBandAnalysis)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/jobs", h.handleListJobRuns)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/jobs/{jobID}", h.handleGetJobRun)
	})
}

// handleDashboard returns a role-appropriate summary for the caller.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	switch user.RoleName {
	case auth.RoleEmployee:
		employeeID, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		data, err := h.Service.EmployeeDashboard(r.Context(), user.TenantID, employeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, data, middleware.GetRequestID(r.Context()))
	case auth.RoleManager:
		employeeID, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		data, err := h.Service.ManagerDashboard(r.Context(), user.TenantID, employeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, data, middleware.GetRequestID(r.Context()))
	default:
		data, err := h.Service.HRDashboard(r.Context(), user.TenantID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, data, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleBandAnalysis(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	bandID := chi.URLParam(r, "bandID")

	if !h.canViewEmployee(r, user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	analysis, err := h.Skills.BandAnalysis(r.Context(), user.TenantID, employeeID, bandID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "band analysis unavailable", middleware.GetRequestID(r.Context()))
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="band-analysis.pdf"`)
		if err := reports.WriteBandAnalysisPDF(w, analysis); err != nil {
			slog.Warn("band analysis pdf export failed", "err", err)
		}
		return
	}

	api.Success(w, analysis, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := reports.JobRunFilter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("startedFrom"); raw != "" {
		if parsed, err := shared.ParseDate(raw); err == nil {
			filter.StartedFrom = &parsed
		}
	}
	if raw := r.URL.Query().Get("startedTo"); raw != "" {
		if parsed, err := shared.ParseDate(raw); err == nil {
			end := parsed.Add(24*time.Hour - time.Nanosecond)
			filter.StartedTo = &end
		}
	}

	page := shared.ParsePagination(r, 20, 100)

	total, err := h.Service.CountJobRuns(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	runs, err := h.Service.JobRuns(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	if runs == nil {
		runs = []map[string]any{}
	}
	api.SuccessWithMeta(w, runs, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	run, err := h.Service.GetJobRun(r.Context(), user.TenantID, chi.URLParam(r, "jobID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) canViewEmployee(r *http.Request, user auth.UserContext, employeeID string) bool {
	switch user.RoleName {
	case auth.RoleHR, auth.RoleCapabilityPartner, auth.RoleSystemAdmin:
		return true
	}
	selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		return false
	}
	if selfID == employeeID {
		return true
	}
	if user.RoleName == auth.RoleManager {
		allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, employeeID)
		if err != nil {
			return false
		}
		return allowed
	}
	return false
}
