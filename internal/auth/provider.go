package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Provider is the account backend. Implementations wrap a third-party
// identity service; the rest of the application only sees session objects.
type Provider interface {
	IsSignedIn() bool
	SignIn(ctx context.Context) Result
	SignOut(ctx context.Context) Result
	Refresh(ctx context.Context) Result
}

// DefaultTokenTTL is the validity window for locally minted access tokens
// when no TTL is configured.
const DefaultTokenTTL = time.Hour

// LocalProvider is a self-contained Provider that mints signed JWTs for a
// configured user. It stands in for a remote identity service in offline
// and development setups.
type LocalProvider struct {
	mu      sync.Mutex
	user    User
	secret  []byte
	issuer  string
	ttl     time.Duration
	session *Session
	now     func() time.Time
}

// NewLocalProvider returns a provider issuing tokens for user, signed with
// secret, using the default TTL.
func NewLocalProvider(user User, secret []byte) *LocalProvider {
	return NewLocalProviderWith(user, secret, "", DefaultTokenTTL)
}

// NewLocalProviderWith returns a provider with the token issuer and
// validity window taken from configuration. A ttl of zero or less falls
// back to DefaultTokenTTL.
func NewLocalProviderWith(user User, secret []byte, issuer string, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &LocalProvider{user: user, secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

func (p *LocalProvider) IsSignedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil && !p.session.Token.Expired(p.now())
}

func (p *LocalProvider) SignIn(_ context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, err := p.mintSession()
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("sign-in failed: %v", err)}
	}
	p.session = session
	return Result{Success: true, Session: session}
}

func (p *LocalProvider) SignOut(_ context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return Result{Success: true}
}

func (p *LocalProvider) Refresh(_ context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return Result{Success: false, Error: "no active session to refresh"}
	}
	session, err := p.mintSession()
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("token refresh failed: %v", err)}
	}
	p.session = session
	return Result{Success: true, Session: session}
}

func (p *LocalProvider) mintSession() (*Session, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   p.user.ID,
		Issuer:    p.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		User: p.user,
		Token: Token{
			AccessToken: signed,
			ExpiresAt:   expiresAt,
			TokenType:   "Bearer",
		},
		Active:    true,
		CreatedAt: now,
	}, nil
}

// ValidateAccessToken parses and verifies a token minted by a LocalProvider
// with the same secret, returning the subject (user ID).
func ValidateAccessToken(tokenString string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid access token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid access token claims")
	}
	return claims.Subject, nil
}
