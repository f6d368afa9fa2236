package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "leaderboard.html", nil)
}

type leaderboardEntry struct {
	ID             int64          `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Score          int            `json:"score"`
	CategoryScores map[string]int `json:"category_scores"`
	ProfilePic     string         `json:"profile_pic,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (h *Handler) handleLeaderboardData(w http.ResponseWriter, r *http.Request) {
	participants, err := h.store.ListSubmittedByScore()
	if err != nil {
		slog.Error("load leaderboard data", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load leaderboard data")
		return
	}

	data := make([]leaderboardEntry, 0, len(participants))
	for _, p := range participants {
		name := p.Name
		if name == "" {
			name = "Unknown"
		}
		categoryScores := p.CategoryScores
		if categoryScores == nil {
			categoryScores = map[string]int{}
			for _, c := range model.Categories {
				categoryScores[c] = 0
			}
		}
		data = append(data, leaderboardEntry{
			ID:             p.ID,
			Email:          p.Email,
			Name:           name,
			Score:          p.Score,
			CategoryScores: categoryScores,
			ProfilePic:     p.ProfilePic,
			CreatedAt:      p.CreatedAt,
		})
	}
	respondData(w, data)
}

type pendingEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Branch    string    `json:"branch"`
	Year      int       `json:"year"`
	URN       string    `json:"urn,omitempty"`
	CRN       string    `json:"crn,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleAdminPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.store.ListPendingParticipants()
	if err != nil {
		slog.Error("list pending participants", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load pending participants")
		return
	}

	data := make([]pendingEntry, 0, len(pending))
	for _, p := range pending {
		data = append(data, pendingEntry{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			Branch:    p.Branch,
			Year:      p.Year,
			URN:       p.URN,
			CRN:       p.CRN,
			CreatedAt: p.CreatedAt,
		})
	}
	respondData(w, data)
}

func (h *Handler) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, model.ApprovalApproved)
}

// handleAdminReject moves the participant back to pending rather than to
// rejected, matching the historical behavior of the reject action.
func (h *Handler) handleAdminReject(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, model.ApprovalPending)
}

func (h *Handler) setApproval(w http.ResponseWriter, r *http.Request, status model.ApprovalStatus) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	participant, err := h.store.GetParticipant(id)
	if err != nil {
		slog.Error("get participant", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update participant")
		return
	}
	if participant == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err := h.store.SetApprovalStatus(id, status); err != nil {
		slog.Error("set approval status", "id", id, "status", status, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to update participant")
		return
	}
	slog.Info("approval status updated", "id", id, "email", participant.Email, "status", string(status))
	respondJSON(w, http.StatusOK, jsonEnvelope{Success: true})
}

func (h *Handler) handleAdminApprovals(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin_pending.html", nil)
}
