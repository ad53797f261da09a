package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
	"github.com/simp-lee/showroom/internal/repository"
)

// Hooks customizes the behavior of a Service at fixed points of each
// operation. Every hook is optional; nil hooks are skipped. Mutating
// operations run permission → validation → conflict → process → persist →
// post-action, and the first failing hook aborts the operation before
// anything is persisted.
type Hooks[T any] struct {
	// Permission hooks receive the acting identity.
	CanView   func(ctx context.Context, actor string) error
	CanCreate func(ctx context.Context, actor string) error
	CanUpdate func(ctx context.Context, actor string) error
	CanDelete func(ctx context.Context, actor string) error

	// Validation hooks check payload shape and business rules.
	ValidateCreate func(ctx context.Context, entity *T) error
	ValidateUpdate func(ctx context.Context, current *T, changes map[string]any) error
	ValidateDelete func(ctx context.Context, entity *T) error

	// Conflict hooks check uniqueness and cross-record constraints.
	CheckCreateConflicts func(ctx context.Context, entity *T) error
	CheckUpdateConflicts func(ctx context.Context, current *T, changes map[string]any) error

	// Process hooks derive or normalize data just before persistence.
	PrepareCreate func(ctx context.Context, entity *T) error
	PrepareUpdate func(ctx context.Context, current *T, changes map[string]any) error

	// Post-action hooks run after a successful persist; their errors
	// propagate to the caller even though the record is already stored.
	AfterCreate  func(ctx context.Context, entity *T) error
	AfterUpdate  func(ctx context.Context, entity *T) error
	AfterDelete  func(ctx context.Context, entity *T) error
	AfterRestore func(ctx context.Context, entity *T) error

	// ListFilters adjusts list parameters before the query runs, e.g. to
	// constrain visibility for non-privileged callers.
	ListFilters func(ctx context.Context, actor string, params *domain.ListParams) error
}

// Service implements the generic operation pipeline over a repository.
// Concrete entity services embed it and add their domain operations.
type Service[T any] struct {
	repo  *repository.Repository[T]
	name  string
	hooks Hooks[T]
}

// New creates a Service for the named entity. The name feeds error reasons,
// so "collection" yields COLLECTION_NOT_FOUND.
func New[T any](repo *repository.Repository[T], name string, hooks Hooks[T]) *Service[T] {
	return &Service[T]{repo: repo, name: name, hooks: hooks}
}

// Repo exposes the underlying repository for entity-specific queries.
func (s *Service[T]) Repo() *repository.Repository[T] {
	return s.repo
}

// Name returns the entity name used in error reasons.
func (s *Service[T]) Name() string {
	return s.name
}

// NotFound builds the not-found error for this entity and the given key.
func (s *Service[T]) NotFound(key string) error {
	return domain.NotFoundFor(s.name, key)
}

// Get returns the entity with the given id, eager-loading the named
// relations. Absence is a NotFound error at this layer.
func (s *Service[T]) Get(ctx context.Context, id uuid.UUID, load []string) (*T, error) {
	entity, err := s.repo.GetByID(ctx, id, repository.Load(load...))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, s.NotFound(id.String())
	}
	return entity, nil
}

// List returns a page of entities after validating pagination bounds and
// applying the ListFilters hook.
func (s *Service[T]) List(ctx context.Context, params domain.ListParams, actor string) (*domain.PageResult[T], error) {
	if err := s.runActorHook(ctx, s.hooks.CanView, actor); err != nil {
		return nil, err
	}
	if err := ValidatePagination(params.Skip, params.Limit); err != nil {
		return nil, err
	}
	if s.hooks.ListFilters != nil {
		if err := s.hooks.ListFilters(ctx, actor, &params); err != nil {
			return nil, err
		}
	}
	return s.repo.Page(ctx, params)
}

// Create runs the full hook pipeline and persists the entity.
func (s *Service[T]) Create(ctx context.Context, entity *T, actor string) (*T, error) {
	if err := s.runActorHook(ctx, s.hooks.CanCreate, actor); err != nil {
		return nil, err
	}
	if err := s.runEntityHook(ctx, s.hooks.ValidateCreate, entity); err != nil {
		return nil, err
	}
	if err := s.runEntityHook(ctx, s.hooks.CheckCreateConflicts, entity); err != nil {
		return nil, err
	}
	if err := s.runEntityHook(ctx, s.hooks.PrepareCreate, entity); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entity, actor); err != nil {
		return nil, err
	}
	if err := s.runEntityHook(ctx, s.hooks.AfterCreate, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// BulkCreate validates every entity up front, reporting the index of the
// first failing item, then persists the whole batch atomically.
func (s *Service[T]) BulkCreate(ctx context.Context, entities []*T, actor string) ([]T, error) {
	if err := s.runActorHook(ctx, s.hooks.CanCreate, actor); err != nil {
		return nil, err
	}
	for i, entity := range entities {
		if err := s.runEntityHook(ctx, s.hooks.ValidateCreate, entity); err != nil {
			return nil, withItemIndex(err, i)
		}
		if err := s.runEntityHook(ctx, s.hooks.CheckCreateConflicts, entity); err != nil {
			return nil, withItemIndex(err, i)
		}
		if err := s.runEntityHook(ctx, s.hooks.PrepareCreate, entity); err != nil {
			return nil, withItemIndex(err, i)
		}
	}
	if err := s.repo.CreateAll(ctx, entities, actor); err != nil {
		return nil, err
	}

	out := make([]T, len(entities))
	for i, entity := range entities {
		if err := s.runEntityHook(ctx, s.hooks.AfterCreate, entity); err != nil {
			return nil, withItemIndex(err, i)
		}
		out[i] = *entity
	}
	return out, nil
}

// Update applies a change set to the entity with the given id and returns
// the refreshed record. Absence is a NotFound error.
func (s *Service[T]) Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*T, error) {
	if err := s.runActorHook(ctx, s.hooks.CanUpdate, actor); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, s.NotFound(id.String())
	}

	if s.hooks.ValidateUpdate != nil {
		if err := s.hooks.ValidateUpdate(ctx, current, changes); err != nil {
			return nil, err
		}
	}
	if s.hooks.CheckUpdateConflicts != nil {
		if err := s.hooks.CheckUpdateConflicts(ctx, current, changes); err != nil {
			return nil, err
		}
	}
	if s.hooks.PrepareUpdate != nil {
		if err := s.hooks.PrepareUpdate(ctx, current, changes); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, changes, actor)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, s.NotFound(id.String())
	}

	if err := s.runEntityHook(ctx, s.hooks.AfterUpdate, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the entity, softly by default or physically when hard is
// set. Hard deletion also purges records that were already soft-deleted.
func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error {
	if err := s.runActorHook(ctx, s.hooks.CanDelete, actor); err != nil {
		return err
	}

	var opts []repository.QueryOption
	if hard {
		opts = append(opts, repository.IncludeDeleted())
	}
	entity, err := s.repo.GetByID(ctx, id, opts...)
	if err != nil {
		return err
	}
	if entity == nil {
		return s.NotFound(id.String())
	}

	if err := s.runEntityHook(ctx, s.hooks.ValidateDelete, entity); err != nil {
		return err
	}

	var removed bool
	if hard {
		removed, err = s.repo.HardDelete(ctx, id)
	} else {
		removed, err = s.repo.Delete(ctx, id, actor)
	}
	if err != nil {
		return err
	}
	if !removed {
		return s.NotFound(id.String())
	}

	return s.runEntityHook(ctx, s.hooks.AfterDelete, entity)
}

// Restore clears the soft-delete state of the entity. Absence is a
// NotFound error.
func (s *Service[T]) Restore(ctx context.Context, id uuid.UUID, actor string) (*T, error) {
	restored, err := s.repo.Restore(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if restored == nil {
		return nil, s.NotFound(id.String())
	}
	if err := s.runEntityHook(ctx, s.hooks.AfterRestore, restored); err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *Service[T]) runActorHook(ctx context.Context, hook func(context.Context, string) error, actor string) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, actor)
}

func (s *Service[T]) runEntityHook(ctx context.Context, hook func(context.Context, *T) error, entity *T) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, entity)
}

// ValidatePagination enforces skip ≥ 0 and 1 ≤ limit ≤ pkg.MaxLimit.
func ValidatePagination(skip, limit int) error {
	if skip < 0 {
		return domain.Validation("INVALID_PAGINATION", "skip must be non-negative").
			With("skip", skip)
	}
	if limit < 1 || limit > pkg.MaxLimit {
		return domain.Validation("INVALID_PAGINATION",
			fmt.Sprintf("limit must be between 1 and %d", pkg.MaxLimit)).
			With("limit", limit)
	}
	return nil
}

// withItemIndex annotates a bulk-operation error with the index of the
// item that produced it.
func withItemIndex(err error, index int) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.With("item_index", index)
	}
	return err
}
