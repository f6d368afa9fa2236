// Package handler wires the HTTP surface of the quiz application.
package handler

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/auth"
	appI18n "github.com/singhsimarjot13/Aptuquest-2025/internal/i18n"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/quiz"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	provider   auth.IdentityProvider
	policy     *auth.Policy
	config     model.QuizConfig
	sessionTTL time.Duration
}

// New creates a new Handler.
func New(s *store.Store, provider auth.IdentityProvider, policy *auth.Policy, cfg model.QuizConfig, sessionTTL time.Duration) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = store.DefaultSessionTTL
	}
	return &Handler{store: s, provider: provider, policy: policy, config: cfg, sessionTTL: sessionTTL}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.recoverer)
	r.Use(h.loadSession)

	r.Get("/", h.handleIndex)
	r.Get("/google_login", h.handleGoogleLogin)
	r.Get("/logout", h.handleLogout)
	r.Get("/dev", h.handleDev)
	r.Get("/device-restricted", h.handleDeviceRestricted)

	r.Group(func(gr chi.Router) {
		gr.Use(h.requireAuth)
		gr.With(h.restrictMobile).Get("/profile", h.handleProfileForm)
		gr.With(h.restrictMobile).Post("/profile", h.handleProfileSubmit)
		gr.With(h.restrictMobile).Get("/instructions", h.handleInstructions)
		gr.With(h.restrictMobile).Get("/quiz", h.handleQuizPage)
		gr.With(h.restrictMobile).Post("/quiz", h.handleQuizSubmit)
		gr.Get("/thank_you", h.handleThankYou)
		gr.Get("/pending", h.handlePendingPage)
		gr.Post("/send_quiz_email", h.handleSendQuizEmail)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(h.requireAuth, h.requireAdmin)
		ar.Get("/leaderboard", h.handleLeaderboard)
		ar.Get("/leaderboard_data", h.handleLeaderboardData)
		ar.Get("/admin/pending", h.handleAdminPending)
		ar.Post("/admin/approve/{id}", h.handleAdminApprove)
		ar.Post("/admin/reject/{id}", h.handleAdminReject)
		ar.Get("/admin/approvals", h.handleAdminApprovals)
	})

	r.NotFound(h.handleNotFound)
}

// recoverer renders the generic 500 page on an uncaught fault.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				w.WriteHeader(http.StatusInternalServerError)
				h.renderPage(w, r, "500.html", page{})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type indexData struct {
	Error string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var data indexData
	switch r.URL.Query().Get("error") {
	case "login_required":
		data.Error = appI18n.T(r.Context(), "LoginRequired")
	case "login_failed":
		data.Error = appI18n.T(r.Context(), "LoginFailed")
	}
	h.render(w, r, "index.html", data)
}

func (h *Handler) handleDev(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "dev.html", nil)
}

func (h *Handler) handleDeviceRestricted(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "404.html", notFoundData{DeviceRestricted: true})
}

type notFoundData struct {
	Pending          bool
	DeviceRestricted bool
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.renderPage(w, r, "404.html", page{Data: notFoundData{}})
}

func (h *Handler) handlePendingPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "404.html", notFoundData{Pending: true})
}

// redirectAdmin sends administrators straight to the leaderboard from every
// participant-gated route. Reports whether a redirect was written.
func (h *Handler) redirectAdmin(w http.ResponseWriter, r *http.Request) bool {
	id := model.IdentityFromContext(r.Context())
	if id != nil && h.policy.IsAdmin(id.Email) {
		http.Redirect(w, r, "/leaderboard", http.StatusSeeOther)
		return true
	}
	return false
}

// participant loads the caller's record, or nil when no profile exists yet.
func (h *Handler) participant(r *http.Request) (*model.Participant, error) {
	id := model.IdentityFromContext(r.Context())
	if id == nil {
		return nil, nil
	}
	return h.store.GetParticipantByEmail(id.Email)
}

type profileData struct {
	URN    string
	CRN    string
	Branch string
	Year   string
}

func (h *Handler) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	participant, err := h.participant(r)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		h.render(w, r, "profile.html", profileData{})
		return
	}
	if participant != nil {
		h.flash(r, "ProfileExists", "info")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}
	h.render(w, r, "profile.html", profileData{})
}

func (h *Handler) handleProfileSubmit(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	identity := model.IdentityFromContext(r.Context())

	existing, err := h.participant(r)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		h.renderValidationError(w, r, "GenericError", profileData{})
		return
	}
	if existing != nil {
		h.flash(r, "ProfileExists", "info")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}

	urn := strings.TrimSpace(r.FormValue("urn"))
	crn := strings.TrimSpace(r.FormValue("crn"))
	branch := r.FormValue("branch")
	yearStr := r.FormValue("year")
	form := profileData{URN: urn, CRN: crn, Branch: branch, Year: yearStr}

	if branch == "" {
		h.renderValidationError(w, r, "BranchRequired", form)
		return
	}
	year, err := strconv.Atoi(yearStr)
	if yearStr == "" || err != nil {
		h.renderValidationError(w, r, "YearRequired", form)
		return
	}
	if urn == "" && crn == "" {
		h.renderValidationError(w, r, "URNOrCRNRequired", form)
		return
	}

	_, err = h.store.CreateParticipant(model.Participant{
		GoogleID:   identity.GoogleID,
		Name:       identity.Name,
		Email:      identity.Email,
		ProfilePic: identity.Picture,
		URN:        urn,
		CRN:        crn,
		Branch:     branch,
		Year:       year,
	})
	if err != nil {
		slog.Error("create participant", "email", identity.Email, "error", err)
		h.renderValidationError(w, r, "GenericError", form)
		return
	}

	slog.Info("new profile pending approval", "email", identity.Email)
	h.flash(r, "ProfileSubmitted", "info")
	http.Redirect(w, r, "/pending", http.StatusSeeOther)
}

func (h *Handler) renderValidationError(w http.ResponseWriter, r *http.Request, msgID string, form profileData) {
	h.renderWithFlash(w, r, "profile.html", model.Flash{
		Message: appI18n.T(r.Context(), msgID),
		Kind:    "danger",
	}, form)
}

// gateApproved enforces the participant state machine for the instructions
// and quiz routes: a missing profile goes to /profile, an unapproved one to
// /pending. Returns the participant when the caller may proceed.
func (h *Handler) gateApproved(w http.ResponseWriter, r *http.Request) *model.Participant {
	participant, err := h.participant(r)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		h.flash(r, "GenericError", "danger")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	if participant == nil {
		h.flash(r, "CompleteProfileFirst", "warning")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return nil
	}
	if participant.ApprovalStatus != model.ApprovalApproved {
		h.flash(r, "PendingApproval", "warning")
		http.Redirect(w, r, "/pending", http.StatusSeeOther)
		return nil
	}
	return participant
}

func (h *Handler) handleInstructions(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	participant := h.gateApproved(w, r)
	if participant == nil {
		return
	}
	if participant.QuizSubmitted {
		h.flash(r, "QuizAlreadyCompleted", "info")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}
	h.render(w, r, "instructions.html", nil)
}

type quizData struct {
	Questions []model.Question
	Timer     int
}

func (h *Handler) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	participant := h.gateApproved(w, r)
	if participant == nil {
		return
	}
	if participant.QuizSubmitted {
		h.flash(r, "QuizLocked", "warning")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}

	bank, err := h.store.ListQuestionsByCategory()
	if err != nil {
		slog.Error("load question bank", "error", err)
		h.flash(r, "QuizError", "danger")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}

	served := quiz.Select(bank, h.config.QuestionsPerCategory, nil)
	if len(served) == 0 {
		slog.Error("question bank is empty")
		h.flash(r, "QuizError", "danger")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}

	// Persist the exact served set, shuffled options included, so the
	// scoring POST and the emailed report see what the participant saw.
	if err := h.store.SaveServedQuestions(participant.ID, served); err != nil {
		slog.Error("save served questions", "participant_id", participant.ID, "error", err)
		h.flash(r, "QuizError", "danger")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}

	h.render(w, r, "quiz.html", quizData{Questions: served, Timer: h.config.TimerSeconds})
}

func (h *Handler) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	participant := h.gateApproved(w, r)
	if participant == nil {
		return
	}
	if participant.QuizSubmitted {
		h.flash(r, "QuizLocked", "warning")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}
	if len(participant.Questions) == 0 {
		// No served set on record; send the participant to the quiz page.
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flash(r, "QuizError", "danger")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}
	answers := make(map[string][]string, len(participant.Questions))
	for _, q := range participant.Questions {
		key := strconv.FormatInt(q.ID, 10)
		answers[key] = r.Form["q"+key]
	}

	result := quiz.Score(participant.Questions, answers)

	committed, err := h.store.MarkQuizSubmitted(participant.ID, result)
	if err != nil {
		slog.Error("commit quiz submission", "participant_id", participant.ID, "error", err)
		h.flash(r, "QuizError", "danger")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}
	if !committed {
		// A concurrent or repeated submission won; never re-score.
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}

	reason := model.SubmitReason(strings.ToLower(r.FormValue("submit_reason")))
	if r.FormValue("time_up") == "true" {
		reason = model.SubmitTimeUp
	}
	switch reason {
	case model.SubmitTimeUp:
		h.flash(r, "SubmitTimeUp", "warning")
	case model.SubmitBeforeUnload:
		h.flash(r, "SubmitBeforeUnload", "warning")
	case model.SubmitViolation:
		h.flash(r, "SubmitViolation", "warning")
	default:
		h.flashText(r, appI18n.Td(r.Context(), "SubmitManual", map[string]any{
			"Score": result.Score,
			"Total": result.Total,
		}), "success")
	}
	slog.Info("quiz submitted",
		"participant_id", participant.ID,
		"score", result.Score,
		"total", result.Total,
		"reason", string(reason),
	)
	http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
}

type thankYouData struct {
	Name           string
	Score          int
	Total          int
	CategoryScores map[string]int
}

func (h *Handler) handleThankYou(w http.ResponseWriter, r *http.Request) {
	if h.redirectAdmin(w, r) {
		return
	}
	participant, err := h.participant(r)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if participant == nil {
		h.flash(r, "CompleteProfileFirst", "warning")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if !participant.QuizSubmitted {
		h.flash(r, "CompleteQuizFirst", "warning")
		http.Redirect(w, r, "/instructions", http.StatusSeeOther)
		return
	}

	categoryScores := participant.CategoryScores
	if categoryScores == nil {
		categoryScores = make(map[string]int)
		for _, c := range model.Categories {
			categoryScores[c] = 0
		}
	}
	h.render(w, r, "thank_you.html", thankYouData{
		Name:           participant.Name,
		Score:          participant.Score,
		Total:          len(participant.Questions),
		CategoryScores: categoryScores,
	})
}

func (h *Handler) handleSendQuizEmail(w http.ResponseWriter, r *http.Request) {
	participant, err := h.participant(r)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		h.flash(r, "EmailError", "danger")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}
	if participant == nil || !participant.QuizSubmitted {
		h.flash(r, "CompleteQuizFirst", "warning")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	if len(participant.Questions) == 0 {
		h.flash(r, "NoQuestionsFound", "warning")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}

	// The outbox worker delivers out-of-band; the participant is told the
	// email is on its way regardless of eventual delivery.
	if _, err := h.store.EnqueueEmailNotification(participant.ID, participant.Email); err != nil {
		slog.Error("enqueue results email", "participant_id", participant.ID, "error", err)
		h.flash(r, "EmailError", "danger")
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
		return
	}
	h.flash(r, "EmailQueued", "success")
	http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
}
