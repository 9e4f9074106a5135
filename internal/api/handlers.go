package api

import (
	"errors"
	"net/http"

	"github.com/rutar-app/backend/internal/billing"
	"github.com/rutar-app/backend/internal/delivery"
	"github.com/rutar-app/backend/internal/user"
)

type syncUserRequest struct {
	LocalAuthID string `json:"localAuthId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Photo       string `json:"photo"`
}

type syncUserResponse struct {
	Success     bool          `json:"success"`
	IsPro       bool          `json:"isPro"`
	PlanType    user.Plan     `json:"planType"`
	HomeAddress *user.Address `json:"homeAddress,omitempty"`
	Stats       user.Stats    `json:"stats"`
}

// syncUser is the client's single source of truth on every app start: it
// merges the login identity into the account (attaching the local auth id to
// a provisional record when a payment arrived first) and returns the full
// entitlement, address and stats.
func (h *Handler) syncUser(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.LocalAuthID == "" {
		respondError(w, http.StatusBadRequest, "email and localAuthId are required")
		return
	}

	u, err := h.users.SyncLogin(r.Context(), user.SyncInput{
		LocalAuthID: req.LocalAuthID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Photo:       req.Photo,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "sync_user failed", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	respondJSON(w, http.StatusOK, syncUserResponse{
		Success:     true,
		IsPro:       u.Entitlement.IsPro,
		PlanType:    u.Entitlement.PlanType,
		HomeAddress: u.HomeAddress,
		Stats:       u.Stats,
	})
}

type saveStopRequest struct {
	LocalAuthID string  `json:"localAuthId"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Outcome     string  `json:"outcome"`
}

type saveStopResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

func (h *Handler) saveStop(w http.ResponseWriter, r *http.Request) {
	var req saveStopRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, saveStopResponse{OK: false, Msg: "invalid JSON body"})
		return
	}
	if req.LocalAuthID == "" || req.Outcome == "" {
		respondJSON(w, http.StatusBadRequest, saveStopResponse{OK: false, Msg: "localAuthId and outcome are required"})
		return
	}

	err := h.deliveries.Record(r.Context(), delivery.RecordInput{
		DriverID: req.LocalAuthID,
		Email:    req.Email,
		Address:  req.Address,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Result:   delivery.Result(req.Outcome),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "save_stop failed", "driver_id", req.LocalAuthID, "error", err)
		respondJSON(w, http.StatusInternalServerError, saveStopResponse{OK: false, Msg: "failed to save stop"})
		return
	}

	respondJSON(w, http.StatusOK, saveStopResponse{OK: true, Msg: "stop recorded"})
}

type checkOptimizationRequest struct {
	Email string `json:"email"`
}

type checkOptimizationResponse struct {
	Allowed bool `json:"allowed"`
	Usage   *int `json:"usage,omitempty"`
}

func (h *Handler) checkOptimization(w http.ResponseWriter, r *http.Request) {
	var req checkOptimizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	dec, err := h.users.CheckAndConsume(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		// A store failure must never masquerade as allowed=false.
		h.log.ErrorContext(r.Context(), "check_optimization failed", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	resp := checkOptimizationResponse{Allowed: dec.Allowed}
	if dec.Allowed && !dec.Unlimited {
		usage := dec.Usage
		resp.Usage = &usage
	}
	respondJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	Email       string        `json:"email"`
	HomeAddress *user.Address `json:"homeAddress"`
}

type updateProfileResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.users.UpdateProfile(r.Context(), req.Email, req.HomeAddress); err != nil {
		h.log.ErrorContext(r.Context(), "update_profile failed", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	respondJSON(w, http.StatusOK, updateProfileResponse{Success: true})
}

// webhook accepts the provider's notification in any of its push shapes and
// always answers 200: the provider interprets anything else as an invitation
// to redeliver indefinitely, and it has no use for our failure detail.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	n := billing.ParseNotification(r)

	if err := h.processor.Process(r.Context(), n); err != nil {
		h.log.ErrorContext(r.Context(), "webhook processing failed",
			"kind", n.Kind, "resource_id", n.ResourceID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.checks {
		if err := check(r.Context()); err != nil {
			h.log.ErrorContext(r.Context(), "healthcheck failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
