package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"archives/internal/config"
	"archives/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func adminRepoWith(t *testing.T, email, password string) *adminRepoStub {
	t.Helper()
	hashed, err := HashPassword(password)
	require.NoError(t, err)
	return &adminRepoStub{
		getByEmailFn: func(_ context.Context, e string) (*models.Admin, error) {
			if e != email {
				return nil, models.NewNotFoundError("Admin", e)
			}
			return &models.Admin{ID: 9, Email: email, Password: hashed}, nil
		},
		createFn: func(_ context.Context, a *models.Admin) error {
			a.ID = 10
			return nil
		},
	}
}

func newAuth(t *testing.T, rdb *redis.Client, demo bool) *AuthService {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, SessionTTLHours: 1, BackendMode: config.BackendDatabase}
	if demo {
		cfg.BackendMode = config.BackendDemo
	}
	return NewAuthService(adminRepoWith(t, "keeper@archives.local", "correct horse"), rdb, cfg)
}

func TestAuthService_SignInAndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuth(t, nil, false)

	_, err := svc.SignIn(ctx, "keeper@archives.local", "wrong")
	assertAppError(t, err, models.CodeUnauthorized)
	_, err = svc.SignIn(ctx, "nobody@archives.local", "correct horse")
	assertAppError(t, err, models.CodeUnauthorized)
	_, err = svc.SignIn(ctx, "", "")
	assertValidationError(t, err)

	session, err := svc.SignIn(ctx, "keeper@archives.local", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, uint(9), session.AdminID)

	got, err := svc.Session(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.AdminID)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuth(t, nil, false)

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"wrong secret":   sign(jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": TokenAudience, "exp": exp, "jti": "a"}, "other-secret"),
		"wrong issuer":   sign(jwt.MapClaims{"sub": "1", "iss": "someone-else", "aud": TokenAudience, "exp": exp, "jti": "a"}, testSecret),
		"wrong audience": sign(jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": "nope", "exp": exp, "jti": "a"}, testSecret),
		"expired":        sign(jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": TokenAudience, "exp": time.Now().Add(-time.Hour).Unix(), "jti": "a"}, testSecret),
		"missing jti":    sign(jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": TokenAudience, "exp": exp}, testSecret),
		"garbage":        "not-a-token",
		"empty":          "",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Session(ctx, token)
			assertAppError(t, err, models.CodeUnauthorized)
		})
	}
}

func TestAuthService_SignOutRevokes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	for name, client := range map[string]*redis.Client{"redis": rdb, "memory": nil} {
		t.Run(name, func(t *testing.T) {
			svc := newAuth(t, client, false)
			session, err := svc.SignIn(ctx, "keeper@archives.local", "correct horse")
			require.NoError(t, err)

			require.NoError(t, svc.SignOut(ctx, session.Token))
			_, err = svc.Session(ctx, session.Token)
			assertAppError(t, err, models.CodeUnauthorized)
		})
	}
	assert.NotEmpty(t, mr.Keys())
}

func TestAuthService_Subscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuth(t, nil, false)

	var signedIn, signedOut atomic.Int32
	unsubscribe := svc.Subscribe(func(ev SessionEvent) {
		switch ev.Kind {
		case SessionSignedIn:
			signedIn.Add(1)
		case SessionSignedOut:
			signedOut.Add(1)
		}
	})

	session, err := svc.SignIn(ctx, "keeper@archives.local", "correct horse")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, session.Token))
	assert.Equal(t, int32(1), signedIn.Load())
	assert.Equal(t, int32(1), signedOut.Load())

	unsubscribe()
	unsubscribe()
	_, err = svc.SignIn(ctx, "keeper@archives.local", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, int32(1), signedIn.Load())
}

func TestAuthService_DemoMode(t *testing.T) {
	t.Parallel()
	svc := newAuth(t, nil, true)
	_, err := svc.SignIn(context.Background(), "keeper@archives.local", "correct horse")
	assert.ErrorIs(t, err, models.ErrDemoMode)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuth(t, nil, false)

	_, err := svc.CreateAdmin(ctx, "not-an-email", "long enough")
	assertValidationError(t, err)
	_, err = svc.CreateAdmin(ctx, "a@b.c", "short")
	assertValidationError(t, err)

	admin, err := svc.CreateAdmin(ctx, " New@Archives.Local ", "long enough")
	require.NoError(t, err)
	assert.Equal(t, "new@archives.local", admin.Email)
	assert.NotEqual(t, "long enough", admin.Password)
}
