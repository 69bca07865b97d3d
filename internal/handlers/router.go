package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"mileage-manager/internal/config"
	"mileage-manager/internal/services"
	"mileage-manager/internal/session"
	"mileage-manager/internal/store"
)

// Deps bundles what the handlers need.
type Deps struct {
	Store    store.Store
	Sessions *session.Manager
	Email    *services.EmailService
	Cfg      *config.Config
}

// NewRouter wires every route. The returned handler includes the method
// override and authentication guards.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(Authen(d.Sessions))

	forgotLimiter := rate.NewLimiter(rate.Every(time.Hour), 3) // 3 requests per hour

	router.HandleFunc("/", Home()).Methods("GET")

	router.HandleFunc("/authen", AuthenPage(d)).Methods("GET")
	router.HandleFunc("/authen/signup", Signup(d)).Methods("POST")
	router.HandleFunc("/authen/signin", Signin(d)).Methods("POST")
	router.HandleFunc("/authen/signout", Signout(d)).Methods("GET")
	router.HandleFunc("/authen/forgot_password", ForgotPasswordForm()).Methods("GET")
	router.HandleFunc("/authen/forgot_password", RateLimitMiddleware(forgotLimiter)(ForgotPassword(d))).Methods("POST")
	router.HandleFunc("/authen/reset_password/{reset_phrase}", ResetPasswordLink(d)).Methods("GET")
	router.HandleFunc("/authen/reset_password", ResetPassword(d)).Methods("PUT")
	router.HandleFunc("/authen/change_password", ChangePasswordForm()).Methods("GET")
	router.HandleFunc("/authen/change_password", ChangePassword(d)).Methods("PUT")

	router.HandleFunc("/readings", Dashboard(d)).Methods("GET")
	router.HandleFunc("/readings", SubmitReading(d)).Methods("POST")

	router.HandleFunc("/settings", ShowSettings(d)).Methods("GET")
	router.HandleFunc("/settings", UpdateSettings(d)).Methods("PUT")

	return MethodOverride(router)
}

// Home redirects to the readings dashboard.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/readings", http.StatusFound)
	}
}
