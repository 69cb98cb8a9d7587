package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Dan9191/task-tracker/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewManager(client, "test-secret", time.Hour, false), mr
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestCreateLoadDestroy(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	created, err := m.Create(ctx, rec, &models.User{ID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists(sessionKey(created.ID)) {
		t.Fatalf("session not stored in redis")
	}
	if ttl := mr.TTL(sessionKey(created.ID)); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %#v", cookies)
	}

	loaded, err := m.Load(ctx, requestWith(cookies))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UserID != 42 || loaded.Username != "alice" || loaded.ID != created.ID {
		t.Fatalf("unexpected session: %#v", loaded)
	}

	out := httptest.NewRecorder()
	if err := m.Destroy(ctx, out, requestWith(cookies)); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if mr.Exists(sessionKey(created.ID)) {
		t.Fatalf("session still in redis after destroy")
	}
	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected session cookie to be expired, got %#v", cleared)
	}
	if _, err := m.Load(ctx, requestWith(cookies)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("revoked token must not load, got %v", err)
	}
}

func TestLoadWithoutCookie(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Load(context.Background(), requestWith(nil)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLoadRejectsForeignSignature(t *testing.T) {
	m, mr := newTestManager(t)
	other := NewManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "another-secret", time.Hour, false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if _, err := other.Create(ctx, rec, &models.User{ID: 1, Username: "mallory"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Load(ctx, requestWith(rec.Result().Cookies())); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for token signed with another key, got %v", err)
	}
}

func TestLoadAfterRedisExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if _, err := m.Create(ctx, rec, &models.User{ID: 7, Username: "bob"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	if _, err := m.Load(ctx, requestWith(rec.Result().Cookies())); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession once redis record expired, got %v", err)
	}
}

func TestLoadRejectsExpiredToken(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if _, err := m.Create(ctx, rec, &models.User{ID: 7, Username: "bob"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.now = func() time.Time { return time.Now().Add(3 * time.Hour) }

	if _, err := m.Load(ctx, requestWith(rec.Result().Cookies())); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired token, got %v", err)
	}
}

func TestFlashIsOneShot(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, FlashSuccess, "Task created | ok")

	req := requestWith(rec.Result().Cookies())
	out := httptest.NewRecorder()
	flash := PopFlash(out, req)
	if flash == nil || flash.Kind != FlashSuccess || flash.Message != "Task created | ok" {
		t.Fatalf("unexpected flash: %#v", flash)
	}
	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("flash cookie must be cleared, got %#v", cleared)
	}

	if PopFlash(httptest.NewRecorder(), requestWith(nil)) != nil {
		t.Fatalf("expected no flash without cookie")
	}
}
