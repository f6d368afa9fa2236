package i18n

import "net/http"

// Middleware attaches a localizer for the configured UI language to each
// request context, so flash messages and page strings resolve without the
// handlers threading a language value through every call.
func Middleware(lang string) func(http.Handler) http.Handler {
	loc := NewLocalizer(lang)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
