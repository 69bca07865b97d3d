// Package session holds the authenticated identity in signed, http-only
// cookies. Two independent cookies are used: "authen" for the signed-in
// user and "temp_session" for short-lived one-shot data. Cookies are
// re-issued while in active use so the session slides instead of cutting
// off mid-visit.
package session

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	identityCookie = "authen"
	tempCookie     = "temp_session"
)

// Identity is the authenticated user bound to the browser session.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

type identityClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"user_email"`
	jwt.StandardClaims
}

type flashClaims struct {
	Message string `json:"message"`
	jwt.StandardClaims
}

type Manager struct {
	secret       []byte
	duration     time.Duration
	activeWindow time.Duration
}

// NewManager builds a session manager. duration is the cookie lifetime;
// activeWindow is the remaining-life threshold below which the cookie is
// re-issued on the next request.
func NewManager(secret string, duration, activeWindow time.Duration) *Manager {
	return &Manager{
		secret:       []byte(secret),
		duration:     duration,
		activeWindow: activeWindow,
	}
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parseIdentity(tokenString string) (*identityClaims, error) {
	claims := &identityClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// SetIdentity signs the user into the browser session.
func (m *Manager) SetIdentity(w http.ResponseWriter, id Identity) error {
	expires := time.Now().Add(m.duration)
	claims := &identityClaims{
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "mileage-manager",
		},
	}

	value, err := m.sign(claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     identityCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
	})
	return nil
}

// Identity returns the signed-in user, if any. A missing, tampered or
// expired cookie reads as signed out.
func (m *Manager) Identity(r *http.Request) (*Identity, bool) {
	ck, err := r.Cookie(identityCookie)
	if err != nil {
		return nil, false
	}

	claims, err := m.parseIdentity(ck.Value)
	if err != nil {
		return nil, false
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username, Email: claims.Email}, true
}

// Refresh re-issues the identity cookie when its remaining life drops
// below the active window, extending the session for active users.
func (m *Manager) Refresh(w http.ResponseWriter, r *http.Request) {
	ck, err := r.Cookie(identityCookie)
	if err != nil {
		return
	}

	claims, err := m.parseIdentity(ck.Value)
	if err != nil {
		return
	}

	if time.Until(time.Unix(claims.ExpiresAt, 0)) < m.activeWindow {
		m.SetIdentity(w, Identity{UserID: claims.UserID, Username: claims.Username, Email: claims.Email})
	}
}

// Clear signs the user out by expiring the identity cookie. The temp
// cookie is left alone so one-shot notices survive the sign-out.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     identityCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SetFlash stores a one-shot notice in the temp session cookie.
func (m *Manager) SetFlash(w http.ResponseWriter, message string) error {
	expires := time.Now().Add(m.duration)
	claims := &flashClaims{
		Message: message,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "mileage-manager",
		},
	}

	value, err := m.sign(claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tempCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
	})
	return nil
}

// PopFlash reads and clears the one-shot notice, if present.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) (string, bool) {
	ck, err := r.Cookie(tempCookie)
	if err != nil {
		return "", false
	}

	claims := &flashClaims{}
	token, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tempCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	return claims.Message, true
}
