package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/repository"
)

const (
	secretScheme = "sk"
	// prefixBytes sizes the public lookup half of a secret; secretBytes
	// sizes the private half. Both render as hex.
	prefixBytes    = 6
	secretBytes    = 16
	prefixAttempts = 4

	maxKeyNameRunes = 100
)

// KeyService issues, lists, revokes and verifies service keys. A secret
// has the shape sk_<prefix>_<random>; the prefix locates the row and the
// stored bcrypt hash covers the whole secret, so a leaked database still
// reveals no usable credential.
type KeyService struct {
	repo *KeyRepository
}

var _ domain.ServiceKeyService = (*KeyService)(nil)

// NewKeyService creates the service key service.
func NewKeyService(repo *KeyRepository) *KeyService {
	return &KeyService{repo: repo}
}

// Create issues a new key under the given name and returns it together
// with the full secret. The secret is not stored and cannot be shown
// again.
func (s *KeyService) Create(ctx context.Context, name, actor string) (*domain.ServiceKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", domain.Validation("NAME_REQUIRED", "key name must not be empty").With("field", "name")
	}
	if utf8.RuneCountInString(name) > maxKeyNameRunes {
		return nil, "", domain.Validation("NAME_TOO_LONG",
			fmt.Sprintf("key name must be at most %d characters", maxKeyNameRunes)).With("field", "name")
	}

	existing, err := s.repo.GetByField(ctx, "name", name)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.Conflict("KEY_NAME_EXISTS", fmt.Sprintf("a service key named %q already exists", name))
	}

	prefix, err := s.freePrefix(ctx)
	if err != nil {
		return nil, "", err
	}
	secret, err := buildSecret(prefix)
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.Internal("failed to hash service key secret", err)
	}

	key := &domain.ServiceKey{
		Name:       name,
		Prefix:     prefix,
		SecretHash: string(hash),
	}
	if err := s.repo.Create(ctx, key, actor); err != nil {
		return nil, "", err
	}
	return key, secret, nil
}

// List returns all keys, newest first. Hashes never serialize.
func (s *KeyService) List(ctx context.Context) ([]domain.ServiceKey, error) {
	return s.repo.List(ctx, repository.OrderBy("-created_at"))
}

// Revoke removes the key. The next Verify with its secret fails, because
// verification reads the row on every request.
func (s *KeyService) Revoke(ctx context.Context, id uuid.UUID, actor string) error {
	removed, err := s.repo.Delete(ctx, id, actor)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFoundFor("service_key", id)
	}
	return nil
}

// Verify resolves a presented secret to an acting principal. Every
// failure mode returns the same INVALID_API_KEY error so a caller cannot
// probe which part of the secret was wrong.
func (s *KeyService) Verify(ctx context.Context, secret string) (*domain.Principal, error) {
	parts := strings.Split(secret, "_")
	if len(parts) != 3 || parts[0] != secretScheme || parts[1] == "" || parts[2] == "" {
		return nil, domain.Unauthorized("INVALID_API_KEY", "malformed service key")
	}

	key, err := s.repo.GetByField(ctx, "prefix", parts[1])
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, domain.Unauthorized("INVALID_API_KEY", "unknown or revoked service key")
	}
	if bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)) != nil {
		return nil, domain.Unauthorized("INVALID_API_KEY", "unknown or revoked service key")
	}

	// A failed stamp must not block an otherwise valid caller.
	_ = s.repo.TouchLastUsed(ctx, key.ID)

	return &domain.Principal{UID: "key:" + key.Name, Role: domain.RoleAdmin}, nil
}

// freePrefix draws random prefixes until one is unused. Collisions on 6
// random bytes are vanishingly rare, so running out of attempts points at
// a broken random source rather than a full table.
func (s *KeyService) freePrefix(ctx context.Context) (string, error) {
	for attempt := 0; attempt < prefixAttempts; attempt++ {
		buf := make([]byte, prefixBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", domain.Internal("failed to generate key prefix", err)
		}
		prefix := hex.EncodeToString(buf)

		taken, err := s.repo.GetByField(ctx, "prefix", prefix)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return prefix, nil
		}
	}
	return "", domain.Internal("could not allocate a unique key prefix", nil)
}

func buildSecret(prefix string) (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.Internal("failed to generate key secret", err)
	}
	return fmt.Sprintf("%s_%s_%s", secretScheme, prefix, hex.EncodeToString(buf)), nil
}
