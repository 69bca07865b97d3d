package handlers

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"mileage-manager/internal/render"
	"mileage-manager/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the signed-in user placed on the request context
// by the Authen middleware.
func IdentityFrom(r *http.Request) (*session.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*session.Identity)
	return id, ok
}

// MethodOverride rewrites POST requests carrying a _method form field to
// the PUT or DELETE method, so plain HTML forms can drive those routes.
// It must wrap the router: mux matches on the rewritten method.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.PostFormValue("_method") {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authen guards the route space: signed-in users are kept off the
// authentication pages (signout and change_password excepted) and
// signed-out users are sent to them. Active sessions get their cookie
// refreshed on the way through.
func Authen(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			onAuthen := strings.HasPrefix(r.URL.Path, "/authen")

			id, ok := sessions.Identity(r)
			if !ok {
				if onAuthen {
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, "/authen", http.StatusFound)
				return
			}

			sessions.Refresh(w, r)

			if onAuthen && r.URL.Path != "/authen/signout" && r.URL.Path != "/authen/change_password" {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles a handler behind a shared limiter.
func RateLimitMiddleware(limiter *rate.Limiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				render.Page(w, http.StatusTooManyRequests, "message", render.MessagePage{
					Title:     "Forgot Password",
					HeaderMsg: "Password Reset",
					Messages:  []string{"Too many requests. Please try again later."},
				})
				return
			}
			next(w, r)
		}
	}
}
