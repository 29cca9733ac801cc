package endpoint

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/natours/natours-api/auth"
	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/rest/contextutils"
	e "github.com/natours/natours-api/rest/errors"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

const (
	tokenCookie     = "jwt"
	loggedOutCookie = "loggedout"
)

// Signup creates a user with the default role and logs them in
func (s *routeList) Signup(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		var payload m.User
		if err := parseAndValidatePayload(&payload, w, r); err != nil {
			return err
		}

		hash, err := auth.HashPassword(payload.Password)
		if err != nil {
			return e.WrapInternalError("unable to hash password", err)
		}

		user := types.Record{
			"name":             payload.Name,
			"email":            strings.ToLower(payload.Email),
			"photo":            "default.jpg",
			auth.RoleField:     m.RoleUser,
			auth.PasswordField: hash,
			auth.ActiveField:   true,
		}
		if payload.Photo != "" {
			user["photo"] = payload.Photo
		}

		created, err := s.db.Collection(UsersCollection).Create(r.Context(), user)
		if err != nil {
			return storeError(err, "")
		}
		return s.sendToken(w, r, created, http.StatusCreated)
	})(w, r)
}

// Login exchanges an email and password for a token
func (s *routeList) Login(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		body, err := decodeBody(w, r)
		if err != nil {
			return err
		}
		var credentials m.Credentials
		if err := validateRecord(&credentials, body, nil); err != nil {
			return e.NewBadRequestError("Please provide email and password!")
		}

		kind := s.userKind()
		conditions := append([]types.ConditionItem{types.Eq("email", strings.ToLower(credentials.Email))}, kind.Scope...)
		users, err := s.db.Collection(UsersCollection).Find(conditions...).Limit(1).All(r.Context())
		if err != nil {
			return storeError(err, "")
		}
		if len(users) == 0 {
			return e.NewUnauthorizedError("Incorrect email or password")
		}
		hash, _ := users[0][auth.PasswordField].(string)
		if !auth.CorrectPassword(credentials.Password, hash) {
			return e.NewUnauthorizedError("Incorrect email or password")
		}

		return s.sendToken(w, r, users[0], http.StatusOK)
	})(w, r)
}

// Logout replaces the token cookie with one that expires shortly
func (s *routeList) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    loggedOutCookie,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	RespondJSONObjectWithCode(w, http.StatusOK, m.Envelope{Status: m.StatusSuccess})
}

// GetMe returns the logged in user
func (s *routeList) GetMe(w http.ResponseWriter, r *http.Request) {
	s.getOne(s.userKind(), func(r *http.Request) string {
		return contextutils.GetContextUserID(r.Context())
	})(w, r)
}

// UpdateMe changes the name, email or photo of the logged in user
func (s *routeList) UpdateMe(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		body, err := decodeBody(w, r)
		if err != nil {
			return err
		}
		if _, ok := body[auth.PasswordField]; ok {
			return e.NewBadRequestError(passwordUpdateMessage)
		}
		if _, ok := body[auth.PasswordConfirmField]; ok {
			return e.NewBadRequestError(passwordUpdateMessage)
		}

		changes := types.Record{}
		for _, field := range []string{"name", "email", "photo"} {
			if value, ok := body[field]; ok {
				changes[field] = value
			}
		}
		if email, ok := changes["email"].(string); ok {
			changes["email"] = strings.ToLower(email)
		}

		kind := s.userKind()
		user := contextutils.GetContextUser(r.Context())
		model := kind.Model()
		if err := validateRecord(model, merge(user, changes), changedFields(model, changes)); err != nil {
			return err
		}
		castFields(model, changes)

		id := contextutils.GetContextUserID(r.Context())
		updated, err := s.db.Collection(UsersCollection).FindByIDAndUpdate(r.Context(), id, changes)
		if err != nil {
			return storeError(err, id)
		}

		kind.hide(updated)
		RespondJSONObjectWithCode(w, http.StatusOK, NewSingleEnvelope(s.singleKey(kind), updated))
		return nil
	})(w, r)
}

// UpdateMyPassword changes the password of the logged in user after checking the current one
func (s *routeList) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		var payload m.PasswordUpdate
		if err := parseAndValidatePayload(&payload, w, r); err != nil {
			return err
		}

		user := contextutils.GetContextUser(r.Context())
		hash, _ := user[auth.PasswordField].(string)
		if !auth.CorrectPassword(payload.PasswordCurrent, hash) {
			return e.NewUnauthorizedError("Your current password is wrong.")
		}

		newHash, err := auth.HashPassword(payload.Password)
		if err != nil {
			return e.WrapInternalError("unable to hash password", err)
		}

		id := contextutils.GetContextUserID(r.Context())
		updated, err := s.db.Collection(UsersCollection).FindByIDAndUpdate(r.Context(), id, types.Record{
			auth.PasswordField:          newHash,
			auth.PasswordChangedAtField: auth.PasswordChangedAt(time.Now()),
		})
		if err != nil {
			return storeError(err, id)
		}
		return s.sendToken(w, r, updated, http.StatusOK)
	})(w, r)
}

// DeleteMe deactivates the logged in user. Inactive users are hidden from every user query.
func (s *routeList) DeleteMe(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		id := contextutils.GetContextUserID(r.Context())
		if _, err := s.db.Collection(UsersCollection).FindByIDAndUpdate(r.Context(), id, types.Record{
			auth.ActiveField: false,
		}); err != nil {
			return storeError(err, id)
		}
		RespondJSONObjectWithCode(w, http.StatusNoContent, NewDeleteEnvelope())
		return nil
	})(w, r)
}

// Protect only lets requests carrying a valid token of an existing user through to next
func (s *routeList) Protect(next http.Handler) http.Handler {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		token := requestToken(r)
		if token == "" {
			return e.NewUnauthorizedError("You are not logged in! Please log in to get access.")
		}

		claims, err := auth.ParseToken(token, s.config.Auth().JWTSecret)
		if err != nil {
			return e.NewUnauthorizedError("Invalid token. Please log in again!")
		}

		user, err := s.currentUser(r.Context(), claims.UserID())
		if err != nil {
			return err
		}
		if auth.ChangedPasswordAfter(user, claims.IssuedAtTime()) {
			return e.NewUnauthorizedError("User recently changed password! Please log in again.")
		}

		next.ServeHTTP(w, r.WithContext(contextutils.WithContextUser(r.Context(), user)))
		return nil
	})
}

// RestrictTo only lets users holding one of roles through to next. It must run after Protect.
func (s *routeList) RestrictTo(next http.Handler, roles ...string) http.Handler {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		if !auth.HasRole(contextutils.GetContextUser(r.Context()), roles...) {
			return e.NewForbiddenError("You do not have permission to perform this action")
		}
		next.ServeHTTP(w, r)
		return nil
	})
}

func (s *routeList) currentUser(ctx context.Context, id string) (types.Record, error) {
	user, err := s.findOne(ctx, s.userKind(), id)
	if err != nil {
		if code, ok := e.StatusCode(err); ok && code < http.StatusInternalServerError {
			return nil, e.NewUnauthorizedError("The user belonging to this token does no longer exist.")
		}
		return nil, err
	}
	return user, nil
}

func (s *routeList) sendToken(w http.ResponseWriter, r *http.Request, user types.Record, code int) error {
	id, _ := user[types.IDField].(string)
	authConfig := s.config.Auth()
	token, err := auth.SignToken(id, authConfig.JWTSecret, authConfig.JWTExpiresIn)
	if err != nil {
		return e.WrapInternalError("unable to sign token", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(authConfig.CookieExpiresIn),
		HttpOnly: true,
		Secure:   !config.IsDevelopment(s.config) && isSecure(r),
	})

	kind := s.userKind()
	kind.hide(user)
	RespondJSONObjectWithCode(w, code, m.Envelope{
		Status: m.StatusSuccess,
		Token:  token,
		Data:   map[string]interface{}{s.singleKey(kind): user},
	})
	return nil
}

// requestToken reads the bearer token of the Authorization header, falling back to the token cookie
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != loggedOutCookie {
		return cookie.Value
	}
	return ""
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
