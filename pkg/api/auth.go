package api

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// APIKeyHeader is the header carrying the shared secret.
const APIKeyHeader = "X-API-Key"

// Identity is the synthetic caller derived from a valid API key.
type Identity struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

// SessionUser is the simulated logged-in user behind /contacts/me.
type SessionUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"is_active"`
}

// verifyAPIKey runs the header identity chain as three explicit
// stages: extract the header, check it against the configured secret,
// derive the caller identity. Each stage fails with its own status so
// a missing key and a wrong key are distinguishable.
func (a *API) verifyAPIKey(r *http.Request) (Identity, error) {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		return Identity{}, &httpError{
			Status: http.StatusUnauthorized,
			Detail: "X-API-Key header missing",
		}
	}

	if subtle.ConstantTimeCompare([]byte(key), []byte(a.cfg.Auth.APIKey)) != 1 {
		return Identity{}, &httpError{
			Status: http.StatusForbidden,
			Detail: "Invalid API Key provided (Access Denied)",
		}
	}

	return Identity{
		UserID:      "gcpd_officer_jim",
		Permissions: []string{"read_cases"},
	}, nil
}

// sessionUser returns the simulated current user. The inactive branch
// is reachable through configuration so its 400 path stays testable.
func (a *API) sessionUser() (SessionUser, error) {
	user := SessionUser{
		Username: a.cfg.Auth.SessionUser,
		Email:    a.cfg.Auth.SessionEmail,
		Active:   !a.cfg.Auth.CurrentUserInactive,
	}
	if !user.Active {
		return SessionUser{}, &httpError{
			Status: http.StatusBadRequest,
			Detail: "User account is inactive.",
		}
	}
	return user, nil
}

// requireAdmin layers the admin check on top of the session user.
func (a *API) requireAdmin() (SessionUser, error) {
	user, err := a.sessionUser()
	if err != nil {
		return SessionUser{}, err
	}
	if user.Username != a.cfg.Auth.AdminUser {
		return SessionUser{}, &httpError{
			Status: http.StatusForbidden,
			Detail: "Admin privileges required. Access denied.",
		}
	}
	return user, nil
}

var titleCaser = cases.Title(language.English)

// titleCase renders names the way the dashboards expect them.
func titleCase(s string) string {
	return titleCaser.String(s)
}
