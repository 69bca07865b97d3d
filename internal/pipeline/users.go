package pipeline

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mileage-manager/internal/models"
	"mileage-manager/internal/store"
)

// AdminExistCheck counts admin users into the Count slot. The signin page
// shows the first-admin signup form while this count is zero.
func AdminExistCheck(st store.Store) Step {
	return Step{Name: "admin_exist_check", Run: func(c *Context) error {
		n, err := st.Count(c.Ctx, store.Users, store.Filter{"user_role": models.RoleAdmin})
		if err != nil {
			return err
		}
		c.Count = n
		return nil
	}}
}

// RestrictAdminSignup consumes the admin count: once an admin exists, a
// signup can no longer claim the admin role or the first-admin marker.
func RestrictAdminSignup() Step {
	return Step{Name: "restrict_admin_signup", Run: func(c *Context) error {
		n := c.Count
		c.Count = 0
		if n > 0 {
			c.FirstAdmin = false
			c.Role = models.RoleUser
		}
		return nil
	}}
}

// CheckEmailExist counts users with the submitted email into the Count slot.
func CheckEmailExist(st store.Store) Step {
	return Step{Name: "check_email_exist", Run: func(c *Context) error {
		n, err := st.Count(c.Ctx, store.Users, store.Filter{"user_email": c.Email})
		if err != nil {
			return err
		}
		c.Count = n
		return nil
	}}
}

// DuplicateEmailError fails signup when the email count slot is non-zero.
func DuplicateEmailError() Step {
	return Step{Name: "duplicate_email_error", Run: func(c *Context) error {
		n := c.Count
		c.Count = 0
		if n > 0 {
			return Fail(CodeDuplicateEmail, "Email id already exists.")
		}
		return nil
	}}
}

// EmailNotFoundError fails forgot-password when no user owns the email.
func EmailNotFoundError() Step {
	return Step{Name: "email_not_found_error", Run: func(c *Context) error {
		n := c.Count
		c.Count = 0
		if n == 0 {
			return Fail(CodeNotFound, "Email id not found.")
		}
		return nil
	}}
}

// CreateUser hashes the submitted password and saves the new user record.
// The username defaults to the email; the role defaults to "user".
func CreateUser(st store.Store) Step {
	return Step{Name: "create_new_user", Run: func(c *Context) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		role := c.Role
		if c.FirstAdmin {
			role = models.RoleAdmin
		}
		if role != models.RoleAdmin {
			role = models.RoleUser
		}

		now := time.Now().UTC()
		u := &models.User{
			Username:  c.Email,
			Email:     c.Email,
			Password:  string(hash),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}

		id, err := st.Create(c.Ctx, store.Users, u)
		if err != nil {
			return err
		}
		u.ID = id
		c.User = u
		return nil
	}}
}

// FetchUserByEmail loads the user owning the Email slot into the User slot.
func FetchUserByEmail(st store.Store) Step {
	return Step{Name: "user_info_fetch", Run: func(c *Context) error {
		var u models.User
		err := st.FindOne(c.Ctx, store.Users, store.Filter{"user_email": c.Email}, nil, &u)
		if errors.Is(err, store.ErrNotFound) {
			return Fail(CodeNotFound, "User name / Email not found.")
		}
		if err != nil {
			return err
		}
		c.User = &u
		return nil
	}}
}

// ComparePassword checks the candidate password against the fetched
// user's stored hash.
func ComparePassword() Step {
	return Step{Name: "compare_user_password", Run: func(c *Context) error {
		if err := bcrypt.CompareHashAndPassword([]byte(c.User.Password), []byte(c.Password)); err != nil {
			return Fail(CodePasswordMismatch, "Password does not match.")
		}
		return nil
	}}
}

// UpdatePassword re-hashes NewPassword and overwrites the fetched user's
// stored password.
func UpdatePassword(st store.Store) Step {
	return Step{Name: "update_password", Run: func(c *Context) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		n, err := st.UpdateByFilter(c.Ctx, store.Users,
			store.Filter{"user_email": c.User.Email},
			map[string]any{"password": string(hash), "updated_at": time.Now().UTC()})
		if err != nil {
			return err
		}
		if n == 0 {
			return Fail(CodeNotFound, "User name / Email not found.")
		}
		return nil
	}}
}
