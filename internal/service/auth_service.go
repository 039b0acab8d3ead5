package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"archives/internal/config"
	"archives/internal/models"
	"archives/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Token issuer and audience.
const (
	TokenIssuer   = "archives-api"
	TokenAudience = "archives-client"
)

// Session change kinds delivered to subscribers.
const (
	SessionSignedIn  = "signed_in"
	SessionSignedOut = "signed_out"
)

const minPasswordLen = 8

// Session is an authenticated admin.
type Session struct {
	Token     string    `json:"token,omitempty"`
	AdminID   uint      `json:"admin_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`

	jti string
}

// SessionEvent reports a sign-in or sign-out.
type SessionEvent struct {
	Kind    string
	AdminID uint
}

// AuthService issues and revokes admin sessions.
type AuthService struct {
	admins repository.AdminRepository
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
	demo   bool
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(SessionEvent)
	nextID    int
	// revoked holds blacklisted token ids when Redis is unavailable.
	revoked map[string]time.Time
}

func NewAuthService(admins repository.AdminRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		admins:    admins,
		redis:     rdb,
		secret:    []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL(),
		demo:      cfg.IsDemo(),
		now:       time.Now,
		listeners: make(map[int]func(SessionEvent)),
		revoked:   make(map[string]time.Time),
	}
}

// HashPassword bcrypt-hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CreateAdmin registers an authoring account.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, models.NewValidationError("A valid email is required")
	}
	if len(password) < minPasswordLen {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	admin := &models.Admin{Email: email, Password: hashed}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// SignIn checks the credential pair and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	session, err := s.issue(admin)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.publish(SessionEvent{Kind: SessionSignedIn, AdminID: admin.ID})
	return session, nil
}

func (s *AuthService) issue(admin *models.Admin) (*Session, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	now := s.now()
	expires := now.Add(s.ttl)
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(admin.ID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": expires.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": jti,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, AdminID: admin.ID, Email: admin.Email, ExpiresAt: time.Unix(expires.Unix(), 0), jti: jti}, nil
}

// Session validates a token and returns the session it carries.
func (s *AuthService) Session(ctx context.Context, token string) (*Session, error) {
	session, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.isRevoked(ctx, session.jti)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return session, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.Session(ctx, token)
	if err != nil {
		return err
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, "blacklist:"+session.jti, "1", ttl).Err(); err != nil {
			return err
		}
	} else {
		s.mu.Lock()
		s.revoked[session.jti] = session.ExpiresAt
		s.mu.Unlock()
	}
	s.publish(SessionEvent{Kind: SessionSignedOut, AdminID: session.AdminID})
	return nil
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (s *AuthService) Subscribe(fn func(SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) publish(ev SessionEvent) {
	s.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *AuthService) parse(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	adminID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid admin ID in token")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, models.NewUnauthorizedError("Invalid token id")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, models.NewUnauthorizedError("Invalid token expiry")
	}

	return &Session{AdminID: uint(adminID), ExpiresAt: exp.Time, jti: jti}, nil
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis != nil {
		// A Redis outage does not sign everyone out.
		n, err := s.redis.Exists(ctx, "blacklist:"+jti).Result()
		return err == nil && n > 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}
