package handler

import (
	"errors"
	"net/http"

	"github.com/Dan9191/task-tracker/internal/middleware"
	"github.com/Dan9191/task-tracker/internal/models"
	"github.com/Dan9191/task-tracker/internal/service"
	"github.com/Dan9191/task-tracker/internal/session"
)

// RegisterForm shows the registration page
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", view{Title: "Register"})
}

// Register handles user registration. It does not log the new user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := service.RegisterForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	values := map[string]string{"username": form.Username, "email": form.Email}

	in, err := h.svc.ParseRegisterForm(form)
	if err == nil {
		_, err = h.svc.Register(r.Context(), in)
	}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.render(w, r, http.StatusUnprocessableEntity, "register", view{Title: "Register", Form: values, Errors: verr.Fields})
	case errors.Is(err, models.ErrDuplicateUsername):
		h.render(w, r, http.StatusConflict, "register", view{
			Title: "Register", Form: values, Errors: map[string]string{"username": "This username is already taken"},
		})
	case errors.Is(err, models.ErrDuplicateEmail):
		h.render(w, r, http.StatusConflict, "register", view{
			Title: "Register", Form: values, Errors: map[string]string{"email": "This e-mail is already registered"},
		})
	case err != nil:
		h.fail(w, r, err)
	default:
		session.SetFlash(w, session.FlashSuccess, "Registration successful, you can now log in")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	}
}

// LoginForm shows the login page
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", view{Title: "Log in"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	user, err := h.svc.Login(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, models.ErrInvalidCredentials) {
		h.render(w, r, http.StatusUnauthorized, "login", view{
			Title:  "Log in",
			Form:   map[string]string{"username": username},
			Errors: map[string]string{"form": "Invalid credentials"},
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.sessions.Create(r.Context(), w, user); err != nil {
		h.fail(w, r, err)
		return
	}
	session.SetFlash(w, session.FlashSuccess, "Logged in successfully")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// Logout ends the current session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.WithError(err).Warn("Failed to revoke session")
	}
	session.SetFlash(w, session.FlashInfo, "You have been logged out")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
