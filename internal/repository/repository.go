package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
)

// validColumnName matches only alphanumeric characters and underscores.
var validColumnName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// protectedColumns can never be set through Update. Creation stamps and the
// soft-delete pair are managed by the repository itself.
var protectedColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"created_by": true,
	"updated_at": true,
	"updated_by": true,
	"is_deleted": true,
	"deleted_at": true,
}

// Relation declares an eager-loadable association. Name is the snake_case
// directive callers pass in load lists; Field is the GORM association field.
// Single-valued relations load via JOIN, collection-valued ones via a
// batched Preload query, optionally ordered.
type Relation struct {
	Name   string
	Field  string
	Single bool
	Order  string
}

// Config declares the query capabilities of a repository: which columns may
// be filtered and sorted on, which relations may be eager-loaded, and
// whether rows are soft-deleted or physically removed.
type Config struct {
	SoftDelete   bool
	Filterable   []string
	Sortable     []string
	Relations    []Relation
	DefaultOrder string
}

// Repository provides generic persistence over a single GORM entity type.
// Read operations exclude soft-deleted rows unless IncludeDeleted is given,
// and report absence as (nil, nil) rather than an error.
type Repository[T any] struct {
	db         *gorm.DB
	cfg        Config
	columns    map[string]bool
	filterable map[string]bool
	sortable   map[string]bool
	relations  map[string]Relation
}

// New constructs a repository for T. The entity schema is parsed once so
// Update can drop unknown columns from change sets.
func New[T any](db *gorm.DB, cfg Config) (*Repository[T], error) {
	s, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", *new(T), err)
	}

	columns := make(map[string]bool, len(s.FieldsByDBName))
	for name := range s.FieldsByDBName {
		columns[name] = true
	}

	r := &Repository[T]{
		db:         db,
		cfg:        cfg,
		columns:    columns,
		filterable: make(map[string]bool, len(cfg.Filterable)),
		sortable:   make(map[string]bool, len(cfg.Sortable)),
		relations:  make(map[string]Relation, len(cfg.Relations)),
	}
	for _, f := range cfg.Filterable {
		r.filterable[f] = true
	}
	for _, f := range cfg.Sortable {
		r.sortable[f] = true
	}
	for _, rel := range cfg.Relations {
		r.relations[rel.Name] = rel
	}
	return r, nil
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	clone := *r
	clone.db = tx
	return &clone
}

// DB exposes the underlying handle for entity-specific queries and for
// callers that manage their own transactions.
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// GetByID returns the entity with the given primary key, or (nil, nil) when
// no matching row exists.
func (r *Repository[T]) GetByID(ctx context.Context, id uuid.UUID, opts ...QueryOption) (*T, error) {
	o := applyOptions(opts)
	db, err := r.buildQuery(ctx, o)
	if err != nil {
		return nil, err
	}
	return r.first(db.Where("id = ?", id))
}

// GetByField returns the first entity whose column equals value. The column
// must be declared filterable.
func (r *Repository[T]) GetByField(ctx context.Context, column string, value any, opts ...QueryOption) (*T, error) {
	if err := r.checkFilterable(column); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	db, err := r.buildQuery(ctx, o)
	if err != nil {
		return nil, err
	}
	return r.first(applyClause(db, column, domain.FilterClause{Op: domain.FilterEq, Value: value}))
}

// List returns entities matching the given options, with declared filters,
// ordering, pagination and eager loads applied.
func (r *Repository[T]) List(ctx context.Context, opts ...QueryOption) ([]T, error) {
	o := applyOptions(opts)
	db, err := r.buildQuery(ctx, o)
	if err != nil {
		return nil, err
	}
	db = r.applyOrder(db, o.orderBy)
	if o.skip > 0 {
		db = db.Offset(o.skip)
	}
	if o.limit > 0 {
		db = db.Limit(o.limit)
	}

	var entities []T
	if err := db.Find(&entities).Error; err != nil {
		return nil, mapError(err)
	}
	return entities, nil
}

// Count returns the number of entities matching the given options,
// ignoring pagination.
func (r *Repository[T]) Count(ctx context.Context, opts ...QueryOption) (int64, error) {
	o := applyOptions(opts)
	o.loads = nil
	db, err := r.buildQuery(ctx, o)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// Page combines List and Count into a paginated result.
func (r *Repository[T]) Page(ctx context.Context, params domain.ListParams) (*domain.PageResult[T], error) {
	opts := FromParams(params)
	total, err := r.Count(ctx, opts...)
	if err != nil {
		return nil, err
	}
	items, err := r.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	page := domain.NewPage(items, total, params.Skip, params.Limit)
	return &page, nil
}

// Exists reports whether an entity with the given primary key exists.
func (r *Repository[T]) Exists(ctx context.Context, id uuid.UUID, opts ...QueryOption) (bool, error) {
	o := applyOptions(opts)
	db := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id)
	if r.cfg.SoftDelete && !o.includeDeleted {
		db = db.Where("is_deleted = ?", false)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// Create inserts the entity, stamping CreatedBy when an actor is given.
func (r *Repository[T]) Create(ctx context.Context, entity *T, actor string) error {
	if rec, ok := any(entity).(domain.Record); ok {
		rec.SetCreatedBy(actor)
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// CreateAll inserts all entities atomically in a single transaction.
func (r *Repository[T]) CreateAll(ctx context.Context, entities []*T, actor string) error {
	if len(entities) == 0 {
		return nil
	}
	for _, e := range entities {
		if rec, ok := any(e).(domain.Record); ok {
			rec.SetCreatedBy(actor)
		}
	}
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(&entities).Error; err != nil {
			return mapError(err)
		}
		return nil
	})
}

// Update applies the change set to the entity with the given primary key and
// returns the refreshed record, or (nil, nil) when the entity is absent or
// soft-deleted. Unknown and protected columns are silently dropped; the
// UpdatedBy stamp comes from the actor.
func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*T, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil || entity == nil {
		return entity, err
	}

	payload := r.sanitizeChanges(changes)
	if len(payload) == 0 {
		return entity, nil
	}
	if actor != "" {
		payload["updated_by"] = actor
	}

	if err := r.db.WithContext(ctx).Model(entity).Updates(payload).Error; err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, id)
}

// Delete soft-deletes the entity, or physically removes it when the
// repository was configured without soft delete. Returns false when the
// entity is absent or already deleted.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID, actor string) (bool, error) {
	if !r.cfg.SoftDelete {
		return r.HardDelete(ctx, id)
	}

	payload := map[string]any{
		"is_deleted": true,
		"deleted_at": time.Now(),
	}
	if actor != "" {
		payload["updated_by"] = actor
	}

	res := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(payload)
	if res.Error != nil {
		return false, mapError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// HardDelete physically removes the entity regardless of soft-delete state.
func (r *Repository[T]) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, mapError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Restore clears the soft-delete state and returns the refreshed record.
// Restoring a record that was never deleted returns it unchanged; absence
// returns (nil, nil).
func (r *Repository[T]) Restore(ctx context.Context, id uuid.UUID, actor string) (*T, error) {
	if !r.cfg.SoftDelete {
		return nil, domain.Validation("SOFT_DELETE_UNSUPPORTED", "entity does not support soft deletion")
	}

	entity, err := r.GetByID(ctx, id, IncludeDeleted())
	if err != nil || entity == nil {
		return entity, err
	}
	if rec, ok := any(entity).(domain.Record); ok && !rec.Deleted() {
		return entity, nil
	}

	payload := map[string]any{
		"is_deleted": false,
		"deleted_at": nil,
	}
	if actor != "" {
		payload["updated_by"] = actor
	}

	if err := r.db.WithContext(ctx).Model(entity).Updates(payload).Error; err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, id)
}

// --- query assembly ---

func (r *Repository[T]) buildQuery(ctx context.Context, o queryOptions) (*gorm.DB, error) {
	db := r.db.WithContext(ctx).Model(new(T))
	if r.cfg.SoftDelete && !o.includeDeleted {
		db = db.Where("is_deleted = ?", false)
	}
	db, err := r.applyFilters(db, o.filters)
	if err != nil {
		return nil, err
	}
	return r.applyLoads(db, o.loads), nil
}

func (r *Repository[T]) first(db *gorm.DB) (*T, error) {
	var entity T
	err := db.First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

func (r *Repository[T]) checkFilterable(column string) error {
	if !validColumnName.MatchString(column) || !r.filterable[column] {
		return domain.Validation("FILTER_UNKNOWN_FIELD", fmt.Sprintf("cannot filter on field %q", column)).
			With("field", column)
	}
	return nil
}

func (r *Repository[T]) applyFilters(db *gorm.DB, filters domain.Filters) (*gorm.DB, error) {
	for column, clauses := range filters {
		if err := r.checkFilterable(column); err != nil {
			return nil, err
		}
		for _, clause := range clauses {
			next := applyClause(db, column, clause)
			if next == nil {
				return nil, domain.Validation("FILTER_UNKNOWN_OPERATOR", fmt.Sprintf("unsupported filter operator %q", clause.Op)).
					With("field", column).
					With("operator", string(clause.Op))
			}
			db = next
		}
	}
	return db, nil
}

// applyClause translates a single filter clause into a WHERE condition.
// Returns nil for unrecognized operators.
func applyClause(db *gorm.DB, column string, clause domain.FilterClause) *gorm.DB {
	switch clause.Op {
	case domain.FilterEq:
		if clause.Value == nil {
			return db.Where(column + " IS NULL")
		}
		return db.Where(column+" = ?", clause.Value)
	case domain.FilterIn:
		return db.Where(column+" IN ?", clause.Value)
	case domain.FilterGte:
		return db.Where(column+" >= ?", clause.Value)
	case domain.FilterLte:
		return db.Where(column+" <= ?", clause.Value)
	case domain.FilterGt:
		return db.Where(column+" > ?", clause.Value)
	case domain.FilterLt:
		return db.Where(column+" < ?", clause.Value)
	case domain.FilterLike:
		return db.Where(column+" LIKE ?", clause.Value)
	case domain.FilterILike:
		// LOWER on both sides behaves identically on SQLite and PostgreSQL.
		return db.Where("LOWER("+column+") LIKE LOWER(?)", clause.Value)
	default:
		return nil
	}
}

// applyOrder resolves the order-by directive. A leading '-' means descending.
// Undeclared or malformed columns fall back to the default order.
func (r *Repository[T]) applyOrder(db *gorm.DB, orderBy string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	desc := false
	if strings.HasPrefix(column, "-") {
		desc = true
		column = column[1:]
	}

	if column == "" || !validColumnName.MatchString(column) || !r.sortable[column] {
		return db.Order(r.defaultOrder())
	}
	if desc {
		return db.Order(column + " DESC")
	}
	return db.Order(column + " ASC")
}

func (r *Repository[T]) defaultOrder() string {
	if r.cfg.DefaultOrder != "" {
		return r.cfg.DefaultOrder
	}
	return "created_at DESC"
}

// applyLoads resolves eager-load directives. Undeclared names are skipped.
func (r *Repository[T]) applyLoads(db *gorm.DB, loads []string) *gorm.DB {
	for _, name := range loads {
		rel, ok := r.relations[name]
		if !ok {
			continue
		}
		switch {
		case rel.Single:
			db = db.Joins(rel.Field)
		case rel.Order != "":
			order := rel.Order
			db = db.Preload(rel.Field, func(tx *gorm.DB) *gorm.DB {
				return tx.Order(order)
			})
		default:
			db = db.Preload(rel.Field)
		}
	}
	return db
}

func (r *Repository[T]) sanitizeChanges(changes map[string]any) map[string]any {
	out := make(map[string]any, len(changes))
	for column, value := range changes {
		if protectedColumns[column] || !r.columns[column] {
			continue
		}
		out[column] = value
	}
	return out
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeConflict, "DUPLICATE_KEY", "record already exists", err)
	}
	return domain.Internal("database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
