package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/identity"
	"github.com/simp-lee/showroom/internal/repository"
	"github.com/simp-lee/showroom/internal/service"
)

const displayNameMaxLen = 100

// profileColumns are the only fields a user may change on their own
// account. Role and activation go through the admin operations.
var profileColumns = map[string]bool{
	"display_name": true,
	"photo_url":    true,
	"phone_number": true,
	"notes":        true,
}

// Service implements domain.UserService. Accounts mirror identities from
// the external provider: login provisions them on first sight, and the
// provider remains the source of truth for credentials.
type Service struct {
	base     *service.Service[domain.User]
	repo     *Repository
	verifier identity.Verifier

	invalidate func(uid string)
}

var _ domain.UserService = (*Service)(nil)

// NewService wires the account business rules into the generic hooks.
func NewService(repo *Repository, verifier identity.Verifier) *Service {
	s := &Service{repo: repo, verifier: verifier}
	s.base = service.New(repo.Repository, "user", service.Hooks[domain.User]{
		ValidateCreate:       s.validateCreate,
		CheckCreateConflicts: s.checkCreateConflicts,
		ValidateUpdate:       s.validateUpdate,
	})
	return s
}

// OnPrincipalChange registers a callback fired with the provider subject
// whenever a role or activation change must drop a cached principal.
func (s *Service) OnPrincipalChange(fn func(uid string)) {
	s.invalidate = fn
}

// Login verifies a provider ID token, provisions an account on first
// login, and records the login on every success.
func (s *Service) Login(ctx context.Context, idToken string) (*domain.User, error) {
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByField(ctx, "uid", claims.UID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.provision(ctx, claims)
		if err != nil {
			return nil, err
		}
	}
	if !u.IsActive {
		return nil, domain.Forbidden("USER_DISABLED", "account is deactivated").With("uid", u.UID)
	}

	if err := s.repo.RecordLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, u.ID)
}

// provision creates an account from provider claims on first login. The
// provider vouched for the identity, so the account starts active with
// the default role.
func (s *Service) provision(ctx context.Context, claims *identity.Claims) (*domain.User, error) {
	if claims.Email == "" {
		return nil, domain.Unauthorized("INVALID_TOKEN", "token has no email claim")
	}
	u := &domain.User{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		Role:        domain.RoleUser,
		IsActive:    true,
	}
	return s.base.Create(ctx, u, claims.UID)
}

func (s *Service) Create(ctx context.Context, u *domain.User, actor string) (*domain.User, error) {
	return s.base.Create(ctx, u, actor)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.base.Get(ctx, id, nil)
}

func (s *Service) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.repo.GetByField(ctx, "uid", uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundFor("user", uid)
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByField(ctx, "email", email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundFor("user", email)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, params domain.ListParams, actor string) (*domain.PageResult[domain.User], error) {
	return s.base.List(ctx, params, actor)
}

// UpdateProfile applies self-serve profile changes. Columns outside the
// profile set are dropped, so role and activation cannot ride along.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*domain.User, error) {
	filtered := make(map[string]any, len(changes))
	for column, value := range changes {
		if profileColumns[column] {
			filtered[column] = value
		}
	}
	return s.base.Update(ctx, id, filtered, actor)
}

// UpdateRole assigns a new role. Admin only; the change invalidates the
// caller cache so it takes effect on the user's next request.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string, by *domain.Principal) (*domain.User, error) {
	if !by.IsAdmin() {
		return nil, domain.Forbidden("INSUFFICIENT_PERMISSIONS", "only admins may change roles")
	}
	if !domain.ValidUserRole(role) {
		return nil, domain.Validation("INVALID_ROLE", "unknown role").With("role", role)
	}

	updated, err := s.repo.Update(ctx, id, map[string]any{"role": role}, by.Actor())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, s.base.NotFound(id.String())
	}
	s.notifyPrincipalChange(updated.UID)
	return updated, nil
}

// SetActive deactivates or reactivates an account. Admin only; a
// deactivated account fails authentication with USER_DISABLED.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool, by *domain.Principal) (*domain.User, error) {
	if !by.IsAdmin() {
		return nil, domain.Forbidden("INSUFFICIENT_PERMISSIONS", "only admins may change account activation")
	}

	updated, err := s.repo.Update(ctx, id, map[string]any{"is_active": active}, by.Actor())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, s.base.NotFound(id.String())
	}
	s.notifyPrincipalChange(updated.UID)
	return updated, nil
}

// ResolvePrincipal maps a verified provider subject to the acting
// principal. Unknown subjects resolve to (nil, nil); deactivated accounts
// are refused.
func (s *Service) ResolvePrincipal(ctx context.Context, uid string) (*domain.Principal, error) {
	u, err := s.repo.GetByField(ctx, "uid", uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if !u.IsActive {
		return nil, domain.Forbidden("USER_DISABLED", "account is deactivated").With("uid", uid)
	}
	return &domain.Principal{UserID: u.ID, UID: u.UID, Email: u.Email, Role: u.Role}, nil
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*domain.UserStats, error) {
	return s.repo.Stats(ctx)
}

// --- hooks ---

func (s *Service) validateCreate(ctx context.Context, u *domain.User) error {
	u.UID = strings.TrimSpace(u.UID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.DisplayName = strings.TrimSpace(u.DisplayName)

	if u.UID == "" {
		return domain.Validation("UID_REQUIRED", "provider uid is required")
	}
	if u.Email == "" {
		return domain.Validation("EMAIL_REQUIRED", "email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return domain.Validation("INVALID_EMAIL", "email must be a valid address").With("email", u.Email)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if !domain.ValidUserRole(u.Role) {
		return domain.Validation("INVALID_ROLE", "unknown role").With("role", u.Role)
	}
	if u.DisplayName == "" {
		u.DisplayName = emailLocalPart(u.Email)
	}
	if utf8.RuneCountInString(u.DisplayName) > displayNameMaxLen {
		return domain.Validation("DISPLAY_NAME_TOO_LONG", "display name must be at most 100 characters")
	}
	return nil
}

// checkCreateConflicts rejects duplicate identities. The unique indexes
// span soft-deleted rows, so the checks include them.
func (s *Service) checkCreateConflicts(ctx context.Context, u *domain.User) error {
	existing, err := s.repo.GetByField(ctx, "uid", u.UID, repository.IncludeDeleted())
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Conflict("PROVIDER_UID_EXISTS", "an account already exists for this provider uid").With("uid", u.UID)
	}

	existing, err = s.repo.GetByField(ctx, "email", u.Email, repository.IncludeDeleted())
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Conflict("USER_ALREADY_EXISTS", "an account already exists for this email").With("email", u.Email)
	}
	return nil
}

func (s *Service) validateUpdate(ctx context.Context, current *domain.User, changes map[string]any) error {
	if name, ok := changes["display_name"].(string); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Validation("DISPLAY_NAME_REQUIRED", "display name cannot be blank")
		}
		if utf8.RuneCountInString(name) > displayNameMaxLen {
			return domain.Validation("DISPLAY_NAME_TOO_LONG", "display name must be at most 100 characters")
		}
		changes["display_name"] = name
	}
	return nil
}

func (s *Service) notifyPrincipalChange(uid string) {
	if s.invalidate != nil {
		s.invalidate(uid)
	}
}

// emailLocalPart returns the part before the '@'. Callers validate the
// address first.
func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
