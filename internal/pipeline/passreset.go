package pipeline

import (
	"errors"
	"time"

	"mileage-manager/internal/models"
	"mileage-manager/internal/store"
	"mileage-manager/internal/utils"
)

// Reset links stay valid for 24 hours after creation.
const resetWindow = 24 * time.Hour

const invalidLinkMessage = "The reset link is not correct. Please repeat the Forgot Password process once again."

// GenerateResetPhrase fills the ResetPhrase slot with a fresh opaque token.
func GenerateResetPhrase() Step {
	return Step{Name: "generate_reset_phrase", Run: func(c *Context) error {
		c.ResetPhrase = utils.ResetPhrase()
		return nil
	}}
}

// CreateResetEntry persists the pass-reset record in its active state.
func CreateResetEntry(st store.Store) Step {
	return Step{Name: "password_request_entry", Run: func(c *Context) error {
		now := time.Now().UTC()
		t := &models.PassReset{
			Email:       c.Email,
			ResetPhrase: c.ResetPhrase,
			Status:      models.ResetActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		id, err := st.Create(c.Ctx, store.PassResets, t)
		if err != nil {
			return err
		}
		t.ID = id
		c.Token = t
		return nil
	}}
}

// BuildResetLink constructs the link mailed to the user. Outside
// production the literal link is surfaced on the confirmation page
// instead of being emailed.
func BuildResetLink() Step {
	return Step{Name: "build_reset_link", Run: func(c *Context) error {
		c.ResetLink = "http://" + c.Host + "/authen/reset_password/" + c.ResetPhrase
		if c.Env == "development" {
			c.DisplayResetLink = true
		}
		return nil
	}}
}

// ResetMailer delivers the reset link to the user.
type ResetMailer interface {
	SendResetEmail(to, resetLink string) error
}

// SendResetEmail mails the reset link, unless the link is being displayed
// directly (development mode). When the send fails the just-created token
// is expired so an undelivered link can never be redeemed.
func SendResetEmail(st store.Store, mail ResetMailer) Step {
	return Step{Name: "send_forgot_password_email", Run: func(c *Context) error {
		if c.DisplayResetLink {
			return nil
		}
		if err := mail.SendResetEmail(c.Email, c.ResetLink); err != nil {
			if _, uerr := st.UpdateByFilter(c.Ctx, store.PassResets,
				store.Filter{"reset_phrase": c.ResetPhrase},
				map[string]any{"status": models.ResetExpired, "updated_at": time.Now().UTC()}); uerr != nil {
				return uerr
			}
			return err
		}
		return nil
	}}
}

// FetchResetByPhrase loads the token record bound to the ResetPhrase
// slot; a missing record means the link is not valid.
func FetchResetByPhrase(st store.Store) Step {
	return Step{Name: "reset_link_existence_check", Run: func(c *Context) error {
		var t models.PassReset
		err := st.FindOne(c.Ctx, store.PassResets, store.Filter{"reset_phrase": c.ResetPhrase}, nil, &t)
		if errors.Is(err, store.ErrNotFound) {
			return Fail(CodeInvalidLink, invalidLinkMessage)
		}
		if err != nil {
			return err
		}
		c.Token = &t
		return nil
	}}
}

// CheckResetStatus enforces the token lifecycle: used and expired tokens
// are terminal, and an active token read past the 24 hour window is
// flipped to expired on the spot.
func CheckResetStatus(st store.Store) Step {
	return Step{Name: "reset_link_expiry_check", Run: func(c *Context) error {
		switch c.Token.Status {
		case models.ResetUsed:
			return Fail(CodeTokenUsed, "The reset link has already been used. Please repeat the Forgot Password process once again.")
		case models.ResetExpired:
			return Fail(CodeTokenExpired, "The reset link has expired. Please repeat the Forgot Password process once again.")
		}

		if time.Since(c.Token.CreatedAt) > resetWindow {
			_, err := st.UpdateByFilter(c.Ctx, store.PassResets,
				store.Filter{"reset_phrase": c.Token.ResetPhrase},
				map[string]any{"status": models.ResetExpired, "updated_at": time.Now().UTC()})
			if err != nil {
				return err
			}
			c.Token.Status = models.ResetExpired
			return Fail(CodeTokenExpired, "The reset link has expired. Please repeat the Forgot Password process once again.")
		}
		return nil
	}}
}

// TokenOwnerEmail copies the token's owning email into the Email slot for
// the user fetch that follows.
func TokenOwnerEmail() Step {
	return Step{Name: "token_owner_email", Run: func(c *Context) error {
		c.Email = c.Token.Email
		return nil
	}}
}

// MarkResetUsed transitions the token to its used terminal state after a
// successful password reset.
func MarkResetUsed(st store.Store) Step {
	return Step{Name: "reset_link_status_change", Run: func(c *Context) error {
		_, err := st.UpdateByFilter(c.Ctx, store.PassResets,
			store.Filter{"reset_phrase": c.Token.ResetPhrase},
			map[string]any{"status": models.ResetUsed, "updated_at": time.Now().UTC()})
		if err != nil {
			return err
		}
		c.Token.Status = models.ResetUsed
		return nil
	}}
}
