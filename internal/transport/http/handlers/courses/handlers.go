package courseshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/courses"
	"skillboard/internal/domain/notifications"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *courses.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *courses.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCoursesRead, h.Perms)).Get("/", h.handleListCourses)
		r.With(middleware.RequirePermission(auth.PermCoursesWrite, h.Perms)).Post("/", h.handleCreateCourse)
		r.With(middleware.RequirePermission(auth.PermCoursesRead, h.Perms)).Get("/{courseID}/assignments", h.handleListByCourse)
	})
	r.Route("/assignments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCoursesRead, h.Perms)).Get("/", h.handleListAssignments)
		r.With(middleware.RequirePermission(auth.PermCoursesAssign, h.Perms)).Post("/", h.handleAssign)
		r.With(middleware.RequirePermission(auth.PermCoursesRead, h.Perms)).Get("/{assignmentID}", h.handleGetAssignment)
		r.With(middleware.RequirePermission(auth.PermCoursesRead, h.Perms)).Post("/{assignmentID}/progress", h.handleProgress)
	})
}

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	list, err := h.Service.ListCourses(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "courses_list_failed", "failed to list courses", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload courses.Course
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("code", payload.Code, "course code is required")
	v.Required("title", payload.Title, "course title is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateCourse(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "course_create_failed", "failed to create course", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "courses.create", "course", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit courses.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type assignPayload struct {
	EmployeeID string `json:"employeeId"`
	CourseID   string `json:"courseId"`
	DueDate    string `json:"dueDate"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload assignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("courseId", payload.CourseID, "course id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assignment := courses.Assignment{
		EmployeeID: payload.EmployeeID,
		CourseID:   payload.CourseID,
		AssignedBy: user.UserID,
	}
	if payload.DueDate != "" {
		due, err := shared.ParseDate(payload.DueDate)
		if err != nil || due.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid due date", middleware.GetRequestID(r.Context()))
			return
		}
		assignment.DueDate = &due
	}

	// Managers assign within their own team only.
	if user.RoleName == auth.RoleManager {
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, payload.EmployeeID)
		if err != nil || !allowed {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	}

	created, err := h.Service.Assign(r.Context(), user.TenantID, assignment)
	if err != nil {
		if errors.Is(err, courses.ErrAlreadyAssigned) {
			api.Fail(w, http.StatusConflict, "already_assigned", "course already assigned to employee", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assignment_failed", "failed to assign course", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "courses.assign", "course_assignment", created.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit courses.assign failed", "err", err)
	}

	if h.Notify != nil {
		if userID, err := h.Core.UserIDByEmployeeID(r.Context(), user.TenantID, payload.EmployeeID); err == nil && userID != "" {
			body := fmt.Sprintf("You have been assigned the course %q.", created.CourseTitle)
			if notifyErr := h.Notify.Create(r.Context(), user.TenantID, userID, notifications.TypeCourseAssigned, "Course assigned", body); notifyErr != nil {
				slog.Warn("course assigned notification failed", "err", notifyErr)
			}
		}
	}

	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")

	switch user.RoleName {
	case auth.RoleEmployee:
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = selfID
	case auth.RoleManager:
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		if employeeID == "" {
			employeeID = selfID
		} else if employeeID != selfID {
			allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, employeeID)
			if err != nil || !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
				return
			}
		}
	}

	var list []courses.Assignment
	var err error
	if employeeID == "" {
		list, err = h.Service.ListAll(r.Context(), user.TenantID)
	} else {
		list, err = h.Service.ListByEmployee(r.Context(), user.TenantID, employeeID)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignments_list_failed", "failed to list assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListByCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	courseID := chi.URLParam(r, "courseID")
	list, err := h.Service.ListByCourse(r.Context(), user.TenantID, courseID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignments_list_failed", "failed to list assignments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	assignment, err := h.Service.Get(r.Context(), user.TenantID, assignmentID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.canViewAssignment(r, user, assignment.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignment, middleware.GetRequestID(r.Context()))
}

type progressPayload struct {
	Status         string `json:"status"`
	CertificateURL string `json:"certificateUrl"`
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	assignment, err := h.Service.Get(r.Context(), user.TenantID, assignmentID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", middleware.GetRequestID(r.Context()))
		return
	}

	// Only the assignee progresses their own assignment; HR may correct.
	if user.RoleName != auth.RoleHR && user.RoleName != auth.RoleSystemAdmin {
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil || selfID != assignment.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	}

	var payload progressPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	next, err := courses.ParseStatus(payload.Status)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown assignment status", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Progress(r.Context(), user.TenantID, assignmentID, next, payload.CertificateURL)
	if err != nil {
		switch {
		case errors.Is(err, courses.ErrBackwardTransition):
			api.Fail(w, http.StatusConflict, "backward_transition", "assignment status cannot move backwards", middleware.GetRequestID(r.Context()))
		case errors.Is(err, courses.ErrDirectCompletion):
			api.Fail(w, http.StatusConflict, "direct_completion", "assignment must be started before completion", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "progress_failed", "failed to update assignment", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "courses.progress", "course_assignment", assignmentID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit courses.progress failed", "err", err)
	}

	if updated.Status == courses.StatusCompleted && h.Notify != nil && updated.AssignedBy != "" && updated.AssignedBy != user.UserID {
		body := fmt.Sprintf("%s completed the course %q.", updated.EmployeeName, updated.CourseTitle)
		if notifyErr := h.Notify.Create(r.Context(), user.TenantID, updated.AssignedBy, notifications.TypeCourseCompleted, "Course completed", body); notifyErr != nil {
			slog.Warn("course completed notification failed", "err", notifyErr)
		}
	}

	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) canViewAssignment(r *http.Request, user auth.UserContext, employeeID string) bool {
	if user.RoleName == auth.RoleHR || user.RoleName == auth.RoleCapabilityPartner || user.RoleName == auth.RoleSystemAdmin {
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
