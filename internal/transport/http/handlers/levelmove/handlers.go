package levelmovehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/levelmove"
	"skillboard/internal/domain/notifications"
	"skillboard/internal/domain/skills"
	"skillboard/internal/transport/http/api"
	"skillboard/internal/transport/http/middleware"
	"skillboard/internal/transport/http/shared"
)

type Handler struct {
	Service *levelmove.Service
	Skills  *skills.Service
	Core    *core.Service
	Perms   middleware.PermissionStore
	Notify  *notifications.Service
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore

	// ReadyThreshold is the readiness score at or above which a request
	// is flagged ready for submission.
	ReadyThreshold int
}

func NewHandler(service *levelmove.Service, skillsSvc *skills.Service, coreSvc *core.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore, readyThreshold int) *Handler {
	return &Handler{Service: service, Skills: skillsSvc, Core: coreSvc, Perms: perms, Notify: notify, Audit: auditSvc, Idem: idem, ReadyThreshold: readyThreshold}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/movements", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMovementRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermMovementSubmit, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermMovementRead, h.Perms)).Get("/readiness", h.handleReadiness)
		r.With(middleware.RequirePermission(auth.PermMovementRead, h.Perms)).Get("/{requestID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermMovementApprove, h.Perms)).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermMovementApprove, h.Perms)).Post("/{requestID}/reject", h.handleReject)
	})
}

type submitPayload struct {
	TargetBandID  string `json:"targetBandId"`
	Justification string `json:"justification"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload submitPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.TenantID, user.UserID, "movements.submit", idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "movement_submit_failed", "failed to check idempotency key", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	emp, err := h.Core.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
		return
	}
	if emp.BandID == "" {
		api.Fail(w, http.StatusBadRequest, "no_current_band", "employee has no current band assigned", middleware.GetRequestID(r.Context()))
		return
	}

	targetBandID := payload.TargetBandID
	if targetBandID == "" {
		next, err := h.Core.NextBand(r.Context(), user.TenantID, emp.BandID)
		if err != nil {
			if errors.Is(err, core.ErrBandNotFound) {
				api.Fail(w, http.StatusBadRequest, "no_next_band", "employee is already at the highest band", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "movement_submit_failed", "failed to resolve target band", middleware.GetRequestID(r.Context()))
			return
		}
		targetBandID = next.ID
	}
	if targetBandID == emp.BandID {
		api.Fail(w, http.StatusBadRequest, "invalid_target_band", "target band must differ from the current band", middleware.GetRequestID(r.Context()))
		return
	}

	gaps, err := h.Skills.GapsForBand(r.Context(), user.TenantID, emp.ID, targetBandID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "movement_submit_failed", "failed to compute readiness", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.Submit(r.Context(), user.TenantID, levelmove.SubmitInput{
		EmployeeID:     emp.ID,
		CurrentBandID:  emp.BandID,
		TargetBandID:   targetBandID,
		Justification:  payload.Justification,
		ReadinessScore: skills.ReadinessScore(gaps),
	})
	if err != nil {
		if errors.Is(err, levelmove.ErrAlreadyOpen) {
			api.Fail(w, http.StatusConflict, "movement_already_open", "an open movement request already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "movement_submit_failed", "failed to submit movement request", middleware.GetRequestID(r.Context()))
		return
	}

	if idemKey != "" {
		if encoded, err := json.Marshal(req); err == nil {
			if err := h.Idem.Save(r.Context(), user.TenantID, user.UserID, "movements.submit", idemKey, requestHash, encoded); err != nil {
				slog.Warn("save movement idempotency key failed", "err", err)
			}
		}
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "movement.submit", "level_movement_request", req.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{
		"targetBandId":   req.TargetBandID,
		"readinessScore": req.ReadinessScore,
	}); err != nil {
		slog.Warn("audit movement.submit failed", "err", err)
	}

	if emp.ManagerID != "" && h.Notify != nil {
		if managerUserID, err := h.Core.UserIDByEmployeeID(r.Context(), user.TenantID, emp.ManagerID); err == nil && managerUserID != "" {
			body := fmt.Sprintf("%s %s requested a move to %s.", emp.FirstName, emp.LastName, req.TargetBandName)
			if notifyErr := h.Notify.Create(r.Context(), user.TenantID, managerUserID, notifications.TypeMovementSubmitted, "Level movement submitted", body); notifyErr != nil {
				slog.Warn("movement submitted notification failed", "err", notifyErr)
			}
		}
	}

	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

// handleReadiness previews the live readiness score against the next band
// without opening a request.
func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Core.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
		return
	}

	bandID := r.URL.Query().Get("bandId")
	if bandID == "" {
		if emp.BandID == "" {
			api.Fail(w, http.StatusBadRequest, "no_current_band", "employee has no current band assigned", middleware.GetRequestID(r.Context()))
			return
		}
		next, err := h.Core.NextBand(r.Context(), user.TenantID, emp.BandID)
		if err != nil {
			if errors.Is(err, core.ErrBandNotFound) {
				api.Fail(w, http.StatusBadRequest, "no_next_band", "employee is already at the highest band", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "readiness_failed", "failed to resolve target band", middleware.GetRequestID(r.Context()))
			return
		}
		bandID = next.ID
	}

	gaps, err := h.Skills.GapsForBand(r.Context(), user.TenantID, emp.ID, bandID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "readiness_failed", "failed to compute readiness", middleware.GetRequestID(r.Context()))
		return
	}

	score := skills.ReadinessScore(gaps)
	api.Success(w, map[string]any{
		"bandId":         bandID,
		"readinessScore": score,
		"isReady":        score >= h.ReadyThreshold,
		"gaps":           skills.SortForDisplay(gaps),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	pendingOnly := r.URL.Query().Get("pending") == "true"

	switch user.RoleName {
	case auth.RoleEmployee:
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		list, err := h.Service.ListByEmployee(r.Context(), user.TenantID, selfID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "movement_list_failed", "failed to list movement requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, list, middleware.GetRequestID(r.Context()))
	case auth.RoleManager:
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "no_employee_record", "no employee record linked to this account", middleware.GetRequestID(r.Context()))
			return
		}
		list, err := h.Service.ListAwaitingRole(r.Context(), user.TenantID, user.RoleName, selfID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "movement_list_failed", "failed to list movement requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, list, middleware.GetRequestID(r.Context()))
	case auth.RoleCapabilityPartner:
		list, err := h.Service.ListAwaitingRole(r.Context(), user.TenantID, user.RoleName, "")
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "movement_list_failed", "failed to list movement requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, list, middleware.GetRequestID(r.Context()))
	default:
		var list []levelmove.Request
		var err error
		if pendingOnly {
			list, err = h.Service.ListAwaitingRole(r.Context(), user.TenantID, auth.RoleHR, "")
		} else {
			list, err = h.Service.ListAll(r.Context(), user.TenantID)
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "movement_list_failed", "failed to list movement requests", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, list, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.Get(r.Context(), user.TenantID, requestID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "movement request not found", middleware.GetRequestID(r.Context()))
		return
	}

	if !h.canViewRequest(r, user, req.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type decisionPayload struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "approve")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "reject")
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, action string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")

	// Managers may only decide requests from their own reports.
	if user.RoleName == auth.RoleManager {
		req, err := h.Service.Get(r.Context(), user.TenantID, requestID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "movement request not found", middleware.GetRequestID(r.Context()))
			return
		}
		selfID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		allowed, err := h.Core.IsManagerOf(r.Context(), user.TenantID, selfID, req.EmployeeID)
		if err != nil || !allowed {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
	}

	var req *levelmove.Request
	var err error
	if action == "approve" {
		req, err = h.Service.Approve(r.Context(), user.TenantID, requestID, user.UserID, user.RoleName, payload.Comments)
	} else {
		req, err = h.Service.Reject(r.Context(), user.TenantID, requestID, user.UserID, user.RoleName, payload.Comments)
	}
	if err != nil {
		switch {
		case errors.Is(err, levelmove.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "movement request not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, levelmove.ErrTerminalState):
			api.Fail(w, http.StatusConflict, "already_decided", "movement request is already decided", middleware.GetRequestID(r.Context()))
		case errors.Is(err, levelmove.ErrWrongApprover):
			api.Fail(w, http.StatusForbidden, "wrong_approver", "request is not awaiting your role", middleware.GetRequestID(r.Context()))
		case errors.Is(err, levelmove.ErrCommentsRequired):
			api.Fail(w, http.StatusBadRequest, "comments_required", "rejection requires comments", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "movement_decision_failed", "failed to record decision", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "movement."+action, "level_movement_request", requestID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{
		"status":   req.Status,
		"comments": payload.Comments,
	}); err != nil {
		slog.Warn("audit movement decision failed", "action", action, "err", err)
	}

	h.notifyEmployee(r, user.TenantID, req)

	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyEmployee(r *http.Request, tenantID string, req *levelmove.Request) {
	if h.Notify == nil {
		return
	}
	userID, err := h.Core.UserIDByEmployeeID(r.Context(), tenantID, req.EmployeeID)
	if err != nil || userID == "" {
		return
	}

	var ntype, title, body string
	switch req.Status {
	case levelmove.StatusRejected:
		ntype = notifications.TypeMovementRejected
		title = "Level movement rejected"
		body = fmt.Sprintf("Your request to move to %s was rejected.", req.TargetBandName)
	case levelmove.StatusHRApproved:
		ntype = notifications.TypeMovementApproved
		title = "Level movement approved"
		body = fmt.Sprintf("Congratulations, your move to %s is approved.", req.TargetBandName)
	default:
		ntype = notifications.TypeMovementApproved
		title = "Level movement progressed"
		body = fmt.Sprintf("Your request to move to %s advanced a stage.", req.TargetBandName)
	}
	if err := h.Notify.Create(r.Context(), tenantID, userID, ntype, title, body); err != nil {
		slog.Warn("movement notification failed", "err", err)
	}
}

func (h *Handler) canViewRequest(r *http.Request, user auth.UserContext, employeeID string) bool {
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
