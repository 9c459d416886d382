package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"authrelay/internal/apperr"
)

// Repository implements uniform CRUD and filtered listing over a mapped
// entity type. Eager relation names are gorm association names used by
// ReadByID and List when eager loading is requested.
type Repository[T any] struct {
	db      *gorm.DB
	entity  string
	columns map[string]struct{}
	eagers  []string
}

func New[T any](db *gorm.DB, table string, columns []string, eagers ...string) *Repository[T] {
	cols := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	return &Repository[T]{
		db:      db,
		entity:  entityName(table),
		columns: cols,
		eagers:  eagers,
	}
}

// entityName turns a table name into the display name used in duplicate
// errors: "api_keys" -> "Api_key".
func entityName(table string) string {
	name := strings.TrimSuffix(table, "s")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (r *Repository[T]) orderBy(ordering string) (clause.OrderByColumn, error) {
	column, desc := ordering, false
	if strings.HasPrefix(ordering, "-") {
		column, desc = ordering[1:], true
	}
	if _, ok := r.columns[column]; !ok {
		return clause.OrderByColumn{}, apperr.Validation(
			fmt.Sprintf("unprocessable entity: attribute '%s' does not exist", ordering))
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}, nil
}

func (r *Repository[T]) preload(tx *gorm.DB) *gorm.DB {
	for _, rel := range r.eagers {
		tx = tx.Preload(rel)
	}
	return tx
}

// List builds an ordered, optionally paginated listing. Metadata echoes the
// resolved query; total_count counts the returned page only.
func (r *Repository[T]) List(ctx context.Context, q FindQuery, eager bool) (*FindResult[T], error) {
	order, err := r.orderBy(q.Ordering)
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Model(new(T)).Order(order)
	if eager {
		tx = r.preload(tx)
	}
	if !q.PageSize.All {
		tx = tx.Offset((q.Page - 1) * q.PageSize.Value).Limit(q.PageSize.Value)
	}
	if q.CreatedBefore != nil {
		tx = tx.Where("created_at < ?", *q.CreatedBefore)
	}
	if q.CreatedOnOrBefore != nil {
		tx = tx.Where("created_at <= ?", *q.CreatedOnOrBefore)
	}
	if q.CreatedAfter != nil {
		tx = tx.Where("created_at > ?", *q.CreatedAfter)
	}
	if q.CreatedOnOrAfter != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedOnOrAfter)
	}

	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return &FindResult[T]{Data: rows, Metadata: q.metadata(len(rows))}, nil
}

// ReadByID fetches one row, optionally joining the declared eager relations.
func (r *Repository[T]) ReadByID(ctx context.Context, id string, eager bool) (*T, error) {
	tx := r.db.WithContext(ctx)
	if eager {
		tx = r.preload(tx)
	}
	var m T
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Resource with id=%s not found", id))
		}
		return nil, err
	}
	return &m, nil
}

// GetBy fetches one row by an arbitrary column. Callers translate
// gorm.ErrRecordNotFound into their own error.
func (r *Repository[T]) GetBy(ctx context.Context, column string, value any, eager bool) (*T, error) {
	tx := r.db.WithContext(ctx)
	if eager {
		tx = r.preload(tx)
	}
	var m T
	if err := tx.Where(fmt.Sprintf("%s = ?", column), value).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persists a new row. Uniqueness violations become 409 naming the
// conflicting field when the constraint identifies one.
func (r *Repository[T]) Create(ctx context.Context, m *T) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if constraint, ok := duplicateConstraint(err); ok {
			if field := r.fieldFromConstraint(constraint); field != "" {
				return apperr.Duplicated(fmt.Sprintf("%s already registered", field))
			}
			return apperr.Duplicated(fmt.Sprintf("%s already registered", r.entity))
		}
		return apperr.BadRequest(err.Error())
	}
	return nil
}

// Update applies the provided column changes after verifying at least one of
// them differs from the stored values.
func (r *Repository[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	current, err := r.currentValues(ctx, id)
	if err != nil {
		return nil, err
	}

	identical := true
	for column, value := range changes {
		if !equalValue(value, current[column]) {
			identical = false
			break
		}
	}
	if len(changes) == 0 || identical {
		return nil, apperr.BadRequest("Update aborted: no changes were provided or values are identical to existing ones")
	}

	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(changes).Error; err != nil {
		if constraint, ok := duplicateConstraint(err); ok {
			if field := r.fieldFromConstraint(constraint); field != "" {
				return nil, apperr.Duplicated(fmt.Sprintf("%s already registered", field))
			}
			return nil, apperr.Duplicated(fmt.Sprintf("%s already registered", r.entity))
		}
		return nil, apperr.BadRequest(err.Error())
	}
	return r.ReadByID(ctx, id, false)
}

// UpdateAttr is the single-column variant of Update.
func (r *Repository[T]) UpdateAttr(ctx context.Context, id string, column string, value any) (*T, error) {
	current, err := r.currentValues(ctx, id)
	if err != nil {
		return nil, err
	}
	if equalValue(value, current[column]) {
		return nil, apperr.BadRequest("No changes detected")
	}

	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any{column: value}).Error; err != nil {
		if detail, ok := duplicateDetail(err); ok {
			return nil, apperr.Duplicated(detail)
		}
		return nil, apperr.BadRequest(err.Error())
	}
	return r.ReadByID(ctx, id, false)
}

// DeleteByID removes the row permanently. The not-found wording here differs
// from ReadByID on purpose; clients depend on both messages.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	var m T
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(fmt.Sprintf("not found id: %s", id))
		}
		return err
	}
	return r.db.WithContext(ctx).Delete(&m).Error
}

func (r *Repository[T]) currentValues(ctx context.Context, id string) (map[string]any, error) {
	current := map[string]any{}
	err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Take(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Resource with id=%s not found", id))
		}
		return nil, err
	}
	return current, nil
}

// fieldFromConstraint maps a unique-constraint name back to a column. Longer
// column names are tried first so "user_id" wins over "id".
func (r *Repository[T]) fieldFromConstraint(constraint string) string {
	if constraint == "" {
		return ""
	}
	cols := make([]string, 0, len(r.columns))
	for c := range r.columns {
		if c == "id" {
			continue
		}
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return len(cols[i]) > len(cols[j]) })
	for _, c := range cols {
		if strings.Contains(constraint, c) {
			return strings.ToUpper(c[:1]) + c[1:]
		}
	}
	return ""
}

func duplicateConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

func duplicateDetail(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.Detail != "" {
			return pgErr.Detail, true
		}
		return pgErr.Message, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err.Error(), true
	}
	return "", false
}

// equalValue compares an incoming change against the stored value, tolerating
// the driver/JSON type mismatches (int64 vs float64, []byte vs string).
func equalValue(a, b any) bool {
	na, nb := normalizeValue(a), normalizeValue(b)
	return na == nb
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return fmt.Sprint(v)
	}
}
