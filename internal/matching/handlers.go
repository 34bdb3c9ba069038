package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	candidates, err := h.service.FindCandidates(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotEligible) {
			utils.RespondWithJSON(w, http.StatusOK, CandidatesResponse{
				Eligible:   false,
				Candidates: []*CandidateResult{},
			})
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to find candidates")
		return
	}

	if candidates == nil {
		candidates = []*CandidateResult{}
	}
	utils.RespondWithJSON(w, http.StatusOK, CandidatesResponse{
		Eligible:   true,
		Candidates: candidates,
	})
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	otherID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.service.Compatibility(r.Context(), userID, otherID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCannotRequestSelf):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute compatibility")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateMatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.CreateRequest(r.Context(), userID, dto.TargetUserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRequested):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrNotEligible):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrCannotRequestSelf):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create match request")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, match)
}

func (h *Handler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var dto RespondMatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.service.Respond(r.Context(), matchID, userID, dto.Decision)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidState):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrMatchNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to respond to match request")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	status := r.URL.Query().Get("status")
	switch status {
	case "", StatusPending, StatusAccepted, StatusDeclined, StatusExpired:
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	matches, err := h.service.ListMatches(r.Context(), userID, status)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	if matches == nil {
		matches = []*Match{}
	}
	utils.RespondWithJSON(w, http.StatusOK, matches)
}
