package skillshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/notifications"
	"skillboard/internal/domain/skills"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *skills.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *skills.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/skills", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSkillsRead, h.Perms)).Get("/", h.handleListCatalog)
		r.With(middleware.RequirePermission(auth.PermSkillsWrite, h.Perms)).Post("/", h.handleCreateSkill)
	})
	r.Route("/employees/{employeeID}/skills", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSkillsRead, h.Perms)).Get("/", h.handleListEmployeeSkills)
		r.With(middleware.RequirePermission(auth.PermSkillsAssess, h.Perms)).Put("/{skillID}", h.handleRateSkill)
	})
	r.Route("/employees/{employeeID}/gaps", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSkillsRead, h.Perms)).Get("/{bandID}", h.handleGaps)
		r.With(middleware.RequirePermission(auth.PermSkillsRead, h.Perms)).Get("/{bandID}/analysis", h.handleBandAnalysis)
		r.With(middleware.RequirePermission(auth.PermSkillsRead, h.Perms)).Get("/{bandID}/categories", h.handleCategoryBreakdown)
	})
}

func (h *Handler) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	catalog, err := h.Service.ListCatalog(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "skills_list_failed", "failed to list skills", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, catalog, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload skills.CatalogSkill
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "skill name is required")
	v.Required("category", payload.Category, "category is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateSkill(r.Context(), user.TenantID, payload.Name, payload.Category)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "skill_create_failed", "failed to create skill", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "skills.catalog.create", "skill", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit skills.catalog.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployeeSkills(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !h.canViewEmployee(r, user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.ListEmployeeSkills(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_skills_failed", "failed to list employee skills", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type rateSkillPayload struct {
	Rating string `json:"rating"`
}

func (h *Handler) handleRateSkill(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	skillID := chi.URLParam(r, "skillID")
	if !h.canAssessEmployee(r, user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload rateSkillPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rating, err := skills.ParseRating(payload.Rating)
	if err != nil || !rating.Known() {
		api.Fail(w, http.StatusBadRequest, "invalid_rating", "rating must be one of the proficiency scale values", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.RateSkill(r.Context(), user.TenantID, employeeID, skillID, rating); err != nil {
		if errors.Is(err, skills.ErrInvalidRating) {
			api.Fail(w, http.StatusBadRequest, "invalid_rating", "rating must be one of the proficiency scale values", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "skill_rate_failed", "failed to record assessment", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "skills.assess", "employee_skill", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{
		"skillId": skillID,
		"rating":  rating,
	}); err != nil {
		slog.Warn("audit skills.assess failed", "err", err)
	}

	if userID, err := h.Core.UserIDByEmployeeID(r.Context(), user.TenantID, employeeID); err == nil && userID != "" && userID != user.UserID && h.Notify != nil {
		if notifyErr := h.Notify.Create(r.Context(), user.TenantID, userID, notifications.TypeSkillAssessed, "Skill assessed", "One of your skills received a new assessment."); notifyErr != nil {
			slog.Warn("skill assessed notification failed", "err", notifyErr)
		}
	}

	api.Success(w, map[string]string{"status": "recorded", "rating": string(rating)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGaps(w http.ResponseWriter, r *http.Request) {
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

	gaps, err := h.Service.GapsForBand(r.Context(), user.TenantID, employeeID, bandID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "gaps_failed", "failed to compute skill gaps", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, skills.SortForDisplay(gaps), middleware.GetRequestID(r.Context()))
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

	analysis, err := h.Service.BandAnalysis(r.Context(), user.TenantID, employeeID, bandID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "band_analysis_failed", "failed to build band analysis", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, analysis, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.Service.CategoryBreakdown(r.Context(), user.TenantID, employeeID, bandID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "category_breakdown_failed", "failed to build category breakdown", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) canViewEmployee(r *http.Request, user auth.UserContext, employeeID string) bool {
	if user.RoleName == auth.RoleHR || user.RoleName == auth.RoleCapabilityPartner || user.RoleName == auth.RoleSystemAdmin {
		return true
	}
	selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		slog.Warn("employee self lookup failed", "err", err)
		return false
	}
	if selfID == employeeID {
		return true
	}
	if user.RoleName == auth.RoleManager {
		allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, employeeID)
		if err != nil {
			slog.Warn("manager scope check failed", "err", err)
			return false
		}
		return allowed
	}
	return false
}

// canAssessEmployee mirrors canViewEmployee, except capability partners
// assess no one and employees only rate themselves.
func (h *Handler) canAssessEmployee(r *http.Request, user auth.UserContext, employeeID string) bool {
	if user.RoleName == auth.RoleHR || user.RoleName == auth.RoleSystemAdmin {
		return true
	}
	selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		slog.Warn("employee self lookup failed", "err", err)
		return false
	}
	if selfID == employeeID {
		return true
	}
	if user.RoleName == auth.RoleManager {
		allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, employeeID)
		if err != nil {
			slog.Warn("manager scope check failed", "err", err)
			return false
		}
		return allowed
	}
	return false
}
