package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/skills"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *core.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleGetEmployee)
			r.Put("/", h.handleUpdateEmployee)
		})
	})
	r.Route("/bands", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBandsRead, h.Perms)).Get("/", h.handleListBands)
		r.With(middleware.RequirePermission(auth.PermBandsWrite, h.Perms)).Post("/", h.handleCreateBand)
		r.Route("/{bandID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermBandsRead, h.Perms)).Get("/", h.handleGetBand)
			r.With(middleware.RequirePermission(auth.PermBandsWrite, h.Perms)).Put("/", h.handleUpdateBand)
			r.With(middleware.RequirePermission(auth.PermBandsWrite, h.Perms)).Put("/requirements", h.handleReplaceRequirements)
		})
	})
	r.Route("/capabilities", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBandsRead, h.Perms)).Get("/", h.handleListCapabilities)
		r.With(middleware.RequirePermission(auth.PermBandsWrite, h.Perms)).Post("/", h.handleCreateCapability)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Service.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err == nil {
		core.FilterEmployeeFields(emp, user, true)
	} else {
		emp = nil
	}

	api.Success(w, map[string]any{
		"user": map[string]string{
			"id":       user.UserID,
			"tenantId": user.TenantID,
			"roleId":   user.RoleID,
			"role":     user.RoleName,
		},
		"employee": emp,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := core.EmployeeFilter{
		CapabilityID: r.URL.Query().Get("capabilityId"),
	}

	switch user.RoleName {
	case auth.RoleEmployee:
		selfID, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Success(w, []core.Employee{}, middleware.GetRequestID(r.Context()))
			return
		}
		emp, err := h.Service.GetEmployee(r.Context(), user.TenantID, selfID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
			return
		}
		core.FilterEmployeeFields(emp, user, true)
		api.Success(w, []core.Employee{*emp}, middleware.GetRequestID(r.Context()))
		return
	case auth.RoleManager:
		selfID, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Success(w, []core.Employee{}, middleware.GetRequestID(r.Context()))
			return
		}
		filter.ManagerID = selfID
	}

	employees, err := h.Service.ListEmployees(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}

	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user, employees[i].UserID == user.UserID)
	}

	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	emp, err := h.Service.GetEmployee(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}

	isSelf := emp.UserID == user.UserID
	switch user.RoleName {
	case auth.RoleEmployee:
		if !isSelf {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	case auth.RoleManager:
		if !isSelf {
			selfID, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
			if err != nil {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
				return
			}
			allowed, err := h.Service.IsManagerOf(r.Context(), user.TenantID, selfID, employeeID)
			if err != nil || !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	core.FilterEmployeeFields(emp, user, isSelf)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type createEmployeePayload struct {
	core.Employee
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createEmployeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if payload.Status == "" {
		payload.Status = core.EmployeeStatusActive
	}

	var employeeID string
	var err error
	if payload.Role != "" && payload.Password != "" {
		employeeID, _, err = h.Service.CreateEmployeeWithUser(r.Context(), user.TenantID, payload.Employee, payload.Role, payload.Password)
	} else {
		employeeID, err = h.Service.CreateEmployee(r.Context(), user.TenantID, payload.Employee)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusConflict, "employee_exists", "employee email or number already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.employee.create", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload.Employee); err != nil {
		slog.Warn("audit core.employee.create failed", "err", err)
	}

	api.Created(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	existing, err := h.Service.GetEmployee(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	previousManagerID := existing.ManagerID
	previousBandID := existing.BandID

	var payload core.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// Non-HR users may only touch their own contact details.
	if user.RoleName != auth.RoleHR && user.RoleName != auth.RoleSystemAdmin {
		if existing.UserID != user.UserID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		payload.EmployeeNumber = existing.EmployeeNumber
		payload.FirstName = existing.FirstName
		payload.LastName = existing.LastName
		payload.Email = existing.Email
		payload.NationalID = existing.NationalID
		payload.ManagerID = existing.ManagerID
		payload.BandID = existing.BandID
		payload.CapabilityID = existing.CapabilityID
		payload.StartDate = existing.StartDate
		payload.Status = existing.Status
	}

	if err := h.Service.UpdateEmployee(r.Context(), user.TenantID, employeeID, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}

	if previousBandID != payload.BandID {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.employee.band_change", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]any{"bandId": previousBandID}, map[string]any{"bandId": payload.BandID}); err != nil {
			slog.Warn("audit core.employee.band_change failed", "err", err)
		}
	}
	if previousManagerID != payload.ManagerID {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.employee.manager_change", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]any{"managerId": previousManagerID}, map[string]any{"managerId": payload.ManagerID}); err != nil {
			slog.Warn("audit core.employee.manager_change failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.employee.update", "employee", employeeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit core.employee.update failed", "err", err)
	}

	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBands(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	bands, err := h.Service.ListBands(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "band_list_failed", "failed to list bands", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, bands, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetBand(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	band, err := h.Service.GetBand(r.Context(), user.TenantID, chi.URLParam(r, "bandID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "band not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, band, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateBand(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload core.Band
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "band name is required")
	if payload.Rank <= 0 {
		v.Add("rank", "rank must be a positive integer")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateBand(r.Context(), user.TenantID, payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusConflict, "band_exists", "band name or rank already in use", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "band_create_failed", "failed to create band", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.band.create", "band", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit core.band.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateBand(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	bandID := chi.URLParam(r, "bandID")
	if _, err := h.Service.GetBand(r.Context(), user.TenantID, bandID); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "band not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload core.Band
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.UpdateBand(r.Context(), user.TenantID, bandID, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "band_update_failed", "failed to update band", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": bandID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceRequirements(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	bandID := chi.URLParam(r, "bandID")
	if _, err := h.Service.GetBand(r.Context(), user.TenantID, bandID); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "band not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload []core.BandRequirement
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	seen := make(map[string]bool, len(payload))
	for _, req := range payload {
		if req.SkillID == "" {
			v.Add("skillId", "skill id is required")
			continue
		}
		if seen[req.SkillID] {
			v.Add("skillId", "duplicate skill in requirements")
			continue
		}
		seen[req.SkillID] = true
		if _, err := skills.ParseRating(req.RequiredRating); err != nil {
			v.Add("requiredRating", "unknown proficiency rating")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.ReplaceBandRequirements(r.Context(), user.TenantID, bandID, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "requirements_update_failed", "failed to update band requirements", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "core.band.requirements", "band", bandID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit core.band.requirements failed", "err", err)
	}
	api.Success(w, map[string]any{"id": bandID, "requirements": len(payload)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCapabilities(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	capabilities, err := h.Service.ListCapabilities(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "capability_list_failed", "failed to list capabilities", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, capabilities, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCapability(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload core.Capability
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "capability name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateCapability(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "capability_create_failed", "failed to create capability", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
