package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/session"
)

type stubLoader struct {
	s   *session.Session
	err error
}

func (l stubLoader) Load(context.Context, *http.Request) (*session.Session, error) {
	return l.s, l.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAuthenticateAttachesSession(t *testing.T) {
	want := &session.Session{ID: "s1", UserID: 3, Username: "alice"}
	var got *session.Session
	h := Authenticate(stubLoader{s: want}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if got != want {
		t.Fatalf("expected session in context, got %#v", got)
	}
}

func TestAuthenticateAnonymousAndErrors(t *testing.T) {
	for _, err := range []error{session.ErrNoSession, errors.New("redis down")} {
		called := false
		h := Authenticate(stubLoader{err: err}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if _, ok := SessionFromContext(r.Context()); ok {
				t.Fatalf("unexpected session for error %v", err)
			}
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !called {
			t.Fatalf("next handler not called for error %v", err)
		}
	}
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("protected handler reached")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/login" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireUserPassesAuthenticated(t *testing.T) {
	reached := false
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { reached = true }))
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req = req.WithContext(WithSession(req.Context(), &session.Session{UserID: 1}))

	h.ServeHTTP(httptest.NewRecorder(), req)
	if !reached {
		t.Fatalf("authenticated request was blocked")
	}
}

func TestRequireAPIUser(t *testing.T) {
	h := RequireAPIUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("protected handler reached")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRecoverCallsFallback(t *testing.T) {
	h := Recover(quietLogger(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	h := RequestLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
}
