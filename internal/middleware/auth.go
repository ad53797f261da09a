package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/identity"
	"github.com/simp-lee/showroom/internal/pkg"
)

const (
	authorizationHeader = "Authorization"
	apiKeyHeader        = "X-API-Key"
	principalContextKey = "principal"
)

// PrincipalResolver maps a verified provider subject to the acting
// principal. A nil principal with a nil error means no account exists
// for the subject.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, uid string) (*domain.Principal, error)
}

// KeyVerifier resolves a presented service-key secret to a principal.
type KeyVerifier interface {
	Verify(ctx context.Context, secret string) (*domain.Principal, error)
}

// Authenticator resolves request credentials to a principal. Bearer tokens
// are verified and mapped to an account; X-API-Key secrets are verified as
// service keys. Requests without credentials pass through anonymously;
// route guards (RequireUser, RequireRole) decide what anonymity may reach.
//
// Resolved user principals are cached per subject with a TTL so hot paths
// skip the account lookup. Role and activation changes call Invalidate so
// they take effect immediately. Service keys are verified on every request:
// bcrypt is the cost of immediate revocation.
type Authenticator struct {
	verifier identity.Verifier
	users    PrincipalResolver
	keys     KeyVerifier
	cache    *gocache.Cache
}

// NewAuthenticator builds an Authenticator. A non-positive roleTTL falls
// back to 5 minutes.
func NewAuthenticator(verifier identity.Verifier, users PrincipalResolver, keys KeyVerifier, roleTTL time.Duration) *Authenticator {
	if roleTTL <= 0 {
		roleTTL = 5 * time.Minute
	}
	return &Authenticator{
		verifier: verifier,
		users:    users,
		keys:     keys,
		cache:    gocache.New(roleTTL, 2*roleTTL),
	}
}

// Handler returns the credential-resolution middleware. Presented but
// invalid credentials are rejected even on public routes.
func (a *Authenticator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := strings.TrimSpace(c.GetHeader(authorizationHeader))
		secret := strings.TrimSpace(c.GetHeader(apiKeyHeader))

		switch {
		case authz != "":
			token, ok := bearerToken(authz)
			if !ok {
				abortWith(c, domain.Unauthorized("INVALID_TOKEN", "authorization header must use the Bearer scheme"))
				return
			}
			p, err := a.resolveUser(c.Request.Context(), token)
			if err != nil {
				abortWith(c, err)
				return
			}
			c.Set(principalContextKey, p)
		case secret != "":
			if a.keys == nil {
				abortWith(c, domain.Unauthorized("INVALID_API_KEY", "service keys are not enabled"))
				return
			}
			p, err := a.keys.Verify(c.Request.Context(), secret)
			if err != nil {
				abortWith(c, err)
				return
			}
			c.Set(principalContextKey, p)
		}

		c.Next()
	}
}

func (a *Authenticator) resolveUser(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if cached, ok := a.cache.Get(claims.UID); ok {
		return cached.(*domain.Principal), nil
	}

	p, err := a.users.ResolvePrincipal(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.Unauthorized("USER_NOT_REGISTERED", "no account for this identity").With("uid", claims.UID)
	}

	a.cache.SetDefault(claims.UID, p)
	return p, nil
}

// Invalidate drops the cached principal for a subject so role or
// activation changes apply on the caller's next request.
func (a *Authenticator) Invalidate(uid string) {
	a.cache.Delete(uid)
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			abortWith(c, domain.Unauthorized("AUTH_REQUIRED", "authentication required"))
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers without the given role with 403. Admins pass
// every role gate.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			abortWith(c, domain.Unauthorized("AUTH_REQUIRED", "authentication required"))
			return
		}
		if p.Role != role && !p.IsAdmin() {
			abortWith(c, domain.Forbidden("INSUFFICIENT_PERMISSIONS", "insufficient permissions").With("required_role", role))
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated principal, or nil for
// anonymous requests.
func CurrentPrincipal(c *gin.Context) *domain.Principal {
	if v, exists := c.Get(principalContextKey); exists {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// Actor returns the caller's audit identity, or "" for anonymous requests.
func Actor(c *gin.Context) string {
	return CurrentPrincipal(c).Actor()
}

// SetPrincipal attaches a principal to the context. Exposed for handler
// tests that bypass the authenticator.
func SetPrincipal(c *gin.Context, p *domain.Principal) {
	c.Set(principalContextKey, p)
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortWith(c *gin.Context, err error) {
	pkg.Error(c, err)
	c.Abort()
}
