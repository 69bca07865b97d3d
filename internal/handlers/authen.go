package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"mileage-manager/internal/pipeline"
	"mileage-manager/internal/render"
	"mileage-manager/internal/session"
)

const genericErrorMessage = "Something went wrong. Please try again."

const (
	signinTitle      = "User Sign In"
	signinHeader     = "Please sign in to proceed"
	signupTitle      = "User Sign Up"
	signupHeader     = "Please fill the form to sign up"
	firstAdminTitle  = "First Admin Sign Up"
	firstAdminHeader = "There are no admin user in the system. Create the first admin to proceed."
)

// AuthenPage shows the sign-in form, or the first-admin sign-up form
// while the system has no admin user yet.
func AuthenPage(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := &pipeline.Context{Ctx: r.Context()}
		if err := pipeline.Run(c, pipeline.AdminExistCheck(d.Store)); err != nil {
			log.Printf("authen page: %v", err)
			render.Page(w, http.StatusOK, "signin", render.SigninPage{
				Title:     signinTitle,
				HeaderMsg: signinHeader,
				Errors:    []string{genericErrorMessage},
			})
			return
		}

		if c.Count == 0 {
			render.Page(w, http.StatusOK, "signup", render.SignupPage{
				Title:      firstAdminTitle,
				HeaderMsg:  firstAdminHeader,
				FirstAdmin: true,
			})
			return
		}

		notice, _ := d.Sessions.PopFlash(w, r)
		render.Page(w, http.StatusOK, "signin", render.SigninPage{
			Title:     signinTitle,
			HeaderMsg: signinHeader,
			Notice:    notice,
		})
	}
}

func signupFailure(w http.ResponseWriter, email string, firstAdmin bool, errs []string) {
	page := render.SignupPage{
		Title:      signupTitle,
		HeaderMsg:  signupHeader,
		Email:      email,
		FirstAdmin: firstAdmin,
		Errors:     errs,
	}
	if firstAdmin {
		page.Title = firstAdminTitle
		page.HeaderMsg = firstAdminHeader
	}
	render.Page(w, http.StatusOK, "signup", page)
}

// Signup validates the form, rejects duplicate emails, creates the user
// and signs them in.
func Signup(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.PostFormValue("signup_email"))
		password := r.PostFormValue("signup_password")
		retype := r.PostFormValue("signup_retype_password")
		role := strings.TrimSpace(r.PostFormValue("user_role"))
		firstAdmin := r.PostFormValue("first_admin") == "true"

		errs := validateEmail(nil, email)
		errs = validatePassword(errs, password)
		errs = validateRetypePassword(errs, password, retype)
		if len(errs) > 0 {
			signupFailure(w, email, firstAdmin, errs)
			return
		}

		c := &pipeline.Context{
			Ctx:        r.Context(),
			Email:      email,
			Password:   password,
			Role:       role,
			FirstAdmin: firstAdmin,
		}
		err := pipeline.Run(c,
			pipeline.AdminExistCheck(d.Store),
			pipeline.RestrictAdminSignup(),
			pipeline.CheckEmailExist(d.Store),
			pipeline.DuplicateEmailError(),
			pipeline.CreateUser(d.Store),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				signupFailure(w, email, firstAdmin, f.Messages)
			} else {
				log.Printf("signup: %v", err)
				signupFailure(w, email, firstAdmin, []string{genericErrorMessage})
			}
			return
		}

		if err := d.Sessions.SetIdentity(w, session.Identity{
			UserID:   c.User.ID,
			Username: c.User.Username,
			Email:    c.User.Email,
		}); err != nil {
			log.Printf("signup session: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func signinFailure(w http.ResponseWriter, email string, errs []string) {
	render.Page(w, http.StatusOK, "signin", render.SigninPage{
		Title:     signinTitle,
		HeaderMsg: signinHeader,
		Email:     email,
		Errors:    errs,
	})
}

// Signin validates the form, checks the credentials and establishes the
// session identity.
func Signin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.PostFormValue("signin_email"))
		password := r.PostFormValue("signin_password")

		errs := validateEmail(nil, email)
		errs = validatePassword(errs, password)
		if len(errs) > 0 {
			signinFailure(w, email, errs)
			return
		}

		c := &pipeline.Context{Ctx: r.Context(), Email: email, Password: password}
		err := pipeline.Run(c,
			pipeline.FetchUserByEmail(d.Store),
			pipeline.ComparePassword(),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				signinFailure(w, email, f.Messages)
			} else {
				log.Printf("signin: %v", err)
				signinFailure(w, email, []string{genericErrorMessage})
			}
			return
		}

		if err := d.Sessions.SetIdentity(w, session.Identity{
			UserID:   c.User.ID,
			Username: c.User.Username,
			Email:    c.User.Email,
		}); err != nil {
			log.Printf("signin session: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// Signout clears the session identity unconditionally.
func Signout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Sessions.Clear(w)
		http.Redirect(w, r, "/authen", http.StatusFound)
	}
}

// ForgotPasswordForm shows the forgot-password form.
func ForgotPasswordForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Page(w, http.StatusOK, "forgot_password", render.ForgotPasswordPage{})
	}
}

func forgotPasswordFailure(w http.ResponseWriter, email string, errs []string) {
	render.Page(w, http.StatusOK, "forgot_password", render.ForgotPasswordPage{
		Email:  email,
		Errors: errs,
	})
}

// ForgotPassword creates an active reset token for a known email and
// mails the reset link. Outside production the link is shown directly.
func ForgotPassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.PostFormValue("forgot_email"))

		errs := validateEmail(nil, email)
		if len(errs) > 0 {
			forgotPasswordFailure(w, email, errs)
			return
		}

		c := &pipeline.Context{
			Ctx:   r.Context(),
			Email: email,
			Host:  d.Cfg.AppHost,
			Env:   d.Cfg.AppEnv,
		}
		err := pipeline.Run(c,
			pipeline.CheckEmailExist(d.Store),
			pipeline.EmailNotFoundError(),
			pipeline.GenerateResetPhrase(),
			pipeline.CreateResetEntry(d.Store),
			pipeline.BuildResetLink(),
			pipeline.SendResetEmail(d.Store, d.Email),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				forgotPasswordFailure(w, email, f.Messages)
			} else {
				log.Printf("forgot password: %v", err)
				forgotPasswordFailure(w, email, []string{genericErrorMessage})
			}
			return
		}

		render.Page(w, http.StatusOK, "message", render.MessagePage{
			Title:            "Forgot Password",
			HeaderMsg:        "Password Reset",
			Messages:         []string{"An email has been sent to you. Please check your email and follow the steps to reset the password."},
			ResetLink:        c.ResetLink,
			DisplayResetLink: c.DisplayResetLink,
		})
	}
}

func resetLinkFailure(w http.ResponseWriter, messages []string) {
	render.Page(w, http.StatusOK, "message", render.MessagePage{
		Title:     "Forgot Password",
		HeaderMsg: "Reset Password",
		Messages:  messages,
	})
}

// ResetPasswordLink validates the reset link from the email. A valid,
// unexpired and unused token shows the reset form; anything else renders
// the matching message. An active token read past its window is flipped
// to expired right here.
func ResetPasswordLink(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := &pipeline.Context{
			Ctx:         r.Context(),
			ResetPhrase: mux.Vars(r)["reset_phrase"],
		}
		err := pipeline.Run(c,
			pipeline.FetchResetByPhrase(d.Store),
			pipeline.CheckResetStatus(d.Store),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				resetLinkFailure(w, f.Messages)
			} else {
				log.Printf("reset link: %v", err)
				resetLinkFailure(w, []string{genericErrorMessage})
			}
			return
		}

		render.Page(w, http.StatusOK, "reset_password", render.ResetPasswordPage{
			ResetLink: c.ResetPhrase,
		})
	}
}

// ResetPassword consumes a valid token and overwrites the owning user's
// password. The token checks are the same as on the GET flow so a stale
// form cannot bypass expiry.
func ResetPassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newPassword := r.PostFormValue("new_password")
		retype := r.PostFormValue("retype_password")
		phrase := strings.TrimSpace(r.PostFormValue("reset_link"))

		errs := validatePassword(nil, newPassword)
		errs = validateRetypePassword(errs, newPassword, retype)
		if len(errs) > 0 {
			render.Page(w, http.StatusOK, "reset_password", render.ResetPasswordPage{
				ResetLink: phrase,
				Errors:    errs,
			})
			return
		}

		c := &pipeline.Context{
			Ctx:         r.Context(),
			ResetPhrase: phrase,
			NewPassword: newPassword,
		}
		err := pipeline.Run(c,
			pipeline.FetchResetByPhrase(d.Store),
			pipeline.CheckResetStatus(d.Store),
			pipeline.TokenOwnerEmail(),
			pipeline.FetchUserByEmail(d.Store),
			pipeline.UpdatePassword(d.Store),
			pipeline.MarkResetUsed(d.Store),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				resetLinkFailure(w, f.Messages)
			} else {
				log.Printf("reset password: %v", err)
				resetLinkFailure(w, []string{genericErrorMessage})
			}
			return
		}

		resetLinkFailure(w, []string{"Password has been reset."})
	}
}

// ChangePasswordForm shows the change-password form to a signed-in user.
func ChangePasswordForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r)
		if !ok {
			http.Redirect(w, r, "/authen", http.StatusFound)
			return
		}
		render.Page(w, http.StatusOK, "change_password", render.ChangePasswordPage{
			UserName: id.Username,
		})
	}
}

// ChangePassword verifies the old password, stores the new one and ends
// the session so the user has to sign in again.
func ChangePassword(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r)
		if !ok {
			http.Redirect(w, r, "/authen", http.StatusFound)
			return
		}

		oldPassword := r.PostFormValue("old_password")
		newPassword := r.PostFormValue("new_password")
		retype := r.PostFormValue("retype_password")

		errs := validatePassword(nil, oldPassword)
		errs = validatePassword(errs, newPassword)
		errs = validateRetypePassword(errs, newPassword, retype)
		if len(errs) > 0 {
			render.Page(w, http.StatusOK, "change_password", render.ChangePasswordPage{
				UserName: id.Username,
				Errors:   errs,
			})
			return
		}

		c := &pipeline.Context{
			Ctx:         r.Context(),
			Email:       id.Email,
			Password:    oldPassword,
			NewPassword: newPassword,
		}
		err := pipeline.Run(c,
			pipeline.FetchUserByEmail(d.Store),
			pipeline.ComparePassword(),
			pipeline.UpdatePassword(d.Store),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				render.Page(w, http.StatusOK, "change_password", render.ChangePasswordPage{
					UserName: id.Username,
					Errors:   f.Messages,
				})
			} else {
				log.Printf("change password: %v", err)
				render.Page(w, http.StatusOK, "change_password", render.ChangePasswordPage{
					UserName: id.Username,
					Errors:   []string{genericErrorMessage},
				})
			}
			return
		}

		if err := d.Sessions.SetFlash(w, "Password has been changed. Please sign in with the new password."); err != nil {
			log.Printf("change password flash: %v", err)
		}
		d.Sessions.Clear(w)
		render.Page(w, http.StatusOK, "message", render.MessagePage{
			Title:     "Change Password",
			HeaderMsg: "Change Password",
			Messages:  []string{"Password has been changed. Please sign in with the new password."},
		})
	}
}
