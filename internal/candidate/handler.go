// HTTP handlers for the candidate pipeline service.
//
// Routes:
//
//	GET  /candidates                     → list candidates (optional ?stage=)
//	POST /candidates                     → create candidate
//	GET  /candidates/{id}                → fetch candidate
//	PUT  /candidates/{id}                → update profile
//	POST /candidates/{id}/transition     → stage transition
//	POST /candidates/{id}/substatus      → sub-status update
//	GET  /candidates/{id}/timeline       → event history (newest first)
//	POST /candidates/{id}/timeline       → append manual event
package candidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/B1gO/vic-crm/internal/lifecycle"
)

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler adapts the Service to HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all candidate routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/candidates", h.handleCandidates)
	mux.HandleFunc("/candidates/", h.handleCandidateSubroutes)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleCandidates handles GET/POST /candidates
func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCandidates(w, r)
	case http.MethodPost:
		h.createCandidate(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCandidateSubroutes handles /candidates/{id} and /candidates/{id}/{action}
func (h *Handler) handleCandidateSubroutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2:
		id := parts[1]
		switch r.Method {
		case http.MethodGet:
			h.getCandidate(w, r, id)
		case http.MethodPut:
			h.updateCandidate(w, r, id)
		default:
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 3:
		id, action := parts[1], parts[2]
		switch action {
		case "transition":
			if r.Method != http.MethodPost {
				jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.transition(w, r, id)
		case "substatus":
			if r.Method != http.MethodPost {
				jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.updateSubStatus(w, r, id)
		case "timeline":
			switch r.Method {
			case http.MethodGet:
				h.getTimeline(w, r, id)
			case http.MethodPost:
				h.addTimelineEvent(w, r, id)
			default:
				jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		default:
			jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		}
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) listCandidates(w http.ResponseWriter, r *http.Request) {
	var stage *lifecycle.Stage
	if raw := r.URL.Query().Get("stage"); raw != "" {
		parsed, err := lifecycle.ParseStage(raw)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		stage = &parsed
	}

	candidates, err := h.svc.List(r.Context(), stage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, candidates)
}

func (h *Handler) getCandidate(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, c)
}

func (h *Handler) createCandidate(w http.ResponseWriter, r *http.Request) {
	var body lifecycle.Candidate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.svc.Create(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, created)
}

func (h *Handler) updateCandidate(w http.ResponseWriter, r *http.Request, id string) {
	var body lifecycle.Candidate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, id string) {
	var req lifecycle.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.Transition(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) updateSubStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		SubStatus lifecycle.SubStatus `json:"subStatus"`
		Reason    string              `json:"reason"`
		ActorID   string              `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.UpdateSubStatus(r.Context(), id, body.SubStatus, body.Reason, body.ActorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, updated)
}

func (h *Handler) getTimeline(w http.ResponseWriter, r *http.Request, id string) {
	events, err := h.svc.Timeline(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, events)
}

func (h *Handler) addTimelineEvent(w http.ResponseWriter, r *http.Request, id string) {
	var body lifecycle.TimelineEvent
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.svc.AddTimelineEvent(r.Context(), id, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, created)
}

// ─── Error mapping ───────────────────────────────────────────────────────────

// writeError maps domain errors to HTTP status codes: structurally invalid
// requests and rejected transitions are client errors, missing resources are
// 404, everything else is a retryable 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *lifecycle.ValidationError
	var transition *lifecycle.InvalidTransitionError
	switch {
	case errors.As(err, &validation):
		jsonError(w, validation.Msg, http.StatusBadRequest)
	case errors.As(err, &transition):
		jsonError(w, transition.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBatchNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("[pipeline] internal error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
