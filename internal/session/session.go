package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Dan9191/task-tracker/internal/models"
)

// CookieName holds the signed session token.
const CookieName = "task_session"

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("no session")

// Session identifies the authenticated user of a request.
type Session struct {
	ID       string
	UserID   int64
	Username string
}

type record struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager keeps sessions in Redis. The browser only holds a signed token
// naming the session, so logging out revokes it server-side.
type Manager struct {
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a session manager
func NewManager(client *redis.Client, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		redis:  client,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create starts a session for user and sets the session cookie on w.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, user *models.User) (*Session, error) {
	s := &Session{ID: uuid.NewString(), UserID: user.ID, Username: user.Username}

	data, err := sonic.Marshal(record{UserID: s.UserID, Username: s.Username})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.redis.Set(ctx, sessionKey(s.ID), data, m.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Load returns the session carried by r, or ErrNoSession. Both the token
// signature and the Redis record must be valid and agree on the user.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	cl, err := m.parse(c.Value, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrNoSession
	}

	data, err := m.redis.Get(ctx, sessionKey(cl.ID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var rec record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, ErrNoSession
	}
	if strconv.FormatInt(rec.UserID, 10) != cl.Subject {
		return nil, ErrNoSession
	}
	return &Session{ID: cl.ID, UserID: rec.UserID, Username: rec.Username}, nil
}

// Destroy revokes the session carried by r, if any, and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	cl, err := m.parse(c.Value, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := m.redis.Del(ctx, sessionKey(cl.ID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity
func (m *Manager) Ping(ctx context.Context) error {
	return m.redis.Ping(ctx).Err()
}

func (m *Manager) parse(raw string, opts ...jwt.ParserOption) (*claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	cl := &claims{}
	token, err := jwt.ParseWithClaims(raw, cl, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if cl.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return cl, nil
}
