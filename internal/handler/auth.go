package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	appI18n "github.com/singhsimarjot13/Aptuquest-2025/internal/i18n"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

const (
	sessionCookieName = "session"
	stateCookieName   = "oauth_state"
)

// loadSession resolves the session cookie into an identity on the request
// context. It never rejects: guards downstream decide what anonymous callers
// may see. Every hit slides the session's inactivity window forward.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := h.store.GetWebSession(cookie.Value, h.sessionTTL)
		if err != nil {
			slog.Error("load web session", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := model.ContextWithIdentity(r.Context(), &sess.Identity)
		ctx = model.ContextWithSessionToken(ctx, sess.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth redirects anonymous callers to the home page.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if model.IdentityFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/?error=login_required", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin redirects authenticated non-admins to the home page with a
// denial message. It must run after requireAuth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := model.IdentityFromContext(r.Context())
		if id == nil || !h.policy.IsAdmin(id.Email) {
			h.flash(r, "AdminRequired", "danger")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// restrictMobile redirects phone and tablet user agents away from the quiz
// flow pages.
func (h *Handler) restrictMobile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := strings.ToLower(r.UserAgent())
		for _, marker := range []string{"mobile", "iphone", "android", "ipad"} {
			if strings.Contains(ua, marker) {
				http.Redirect(w, r, "/device-restricted", http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// handleGoogleLogin is both the login entry point and the OAuth callback:
// without a code it redirects to the consent page, with a code it completes
// the flow and opens a session.
func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		state, err := generateState()
		if err != nil {
			slog.Error("generate oauth state", "error", err)
			http.Redirect(w, r, "/?error=login_failed", http.StatusSeeOther)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   300,
			HttpOnly: true,
			Secure:   h.config.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		slog.Warn("oauth state mismatch")
		http.Redirect(w, r, "/?error=login_failed", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	identity, err := h.provider.FetchIdentity(r.Context(), code)
	if err != nil {
		slog.Error("google login failed", "error", err)
		http.Redirect(w, r, "/?error=login_failed", http.StatusSeeOther)
		return
	}

	token, err := h.store.CreateWebSession(identity, h.sessionTTL)
	if err != nil {
		slog.Error("create web session", "error", err)
		http.Redirect(w, r, "/?error=login_failed", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("login", "email", identity.Email)

	// Flash targets the fresh session, not the request context.
	setFlash := func(msgID, kind string, data map[string]any) {
		msg := appI18n.Td(r.Context(), msgID, data)
		if err := h.store.SetFlash(token, msg, kind); err != nil {
			slog.Error("set flash", "error", err)
		}
	}

	if h.policy.IsAdmin(identity.Email) {
		http.Redirect(w, r, "/leaderboard", http.StatusSeeOther)
		return
	}

	participant, err := h.store.GetParticipantByEmail(identity.Email)
	if err != nil {
		slog.Error("lookup participant", "error", err)
		http.Redirect(w, r, "/?error=login_failed", http.StatusSeeOther)
		return
	}
	switch {
	case participant != nil && participant.QuizSubmitted:
		setFlash("WelcomeBackCompleted", "info", map[string]any{"Name": participant.Name})
		http.Redirect(w, r, "/thank_you", http.StatusSeeOther)
	case participant != nil:
		setFlash("WelcomeBackProfile", "info", map[string]any{"Name": participant.Name})
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	default:
		setFlash("WelcomeNew", "success", map[string]any{"Name": identity.Name})
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := model.SessionTokenFromContext(r.Context()); token != "" {
		if err := h.store.DeleteWebSession(token); err != nil {
			slog.Error("delete web session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// flash stores a localized one-shot message on the caller's session.
func (h *Handler) flash(r *http.Request, msgID, kind string) {
	token := model.SessionTokenFromContext(r.Context())
	if token == "" {
		return
	}
	if err := h.store.SetFlash(token, appI18n.T(r.Context(), msgID), kind); err != nil {
		slog.Error("set flash", "error", err)
	}
}

// flashText stores an already-localized message on the caller's session.
func (h *Handler) flashText(r *http.Request, message, kind string) {
	token := model.SessionTokenFromContext(r.Context())
	if token == "" {
		return
	}
	if err := h.store.SetFlash(token, message, kind); err != nil {
		slog.Error("set flash", "error", err)
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
