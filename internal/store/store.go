// Package store is the record store client: typed CRUD over gorm models keyed
// by UUID, with errors normalised to *Error codes.
package store

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows Select, Count and Page calls.
type Filter struct {
	// Where holds column equality conditions; slice values become IN, nil becomes IS NULL.
	Where         map[string]any
	Search        string
	SearchColumns []string
	Order         string
	Limit         int
	Offset        int
}

// Table is the client for one entity table.
type Table[T any] struct {
	db *gorm.DB
}

func NewTable[T any](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

// WithTx returns a copy of the table bound to tx.
func (t *Table[T]) WithTx(tx *gorm.DB) *Table[T] { return &Table[T]{db: tx} }

// DB exposes the underlying handle for ad-hoc queries.
func (t *Table[T]) DB() *gorm.DB { return t.db }

func (t *Table[T]) scoped(ctx context.Context, f Filter) *gorm.DB {
	q := t.db.WithContext(ctx).Model(new(T))
	if len(f.Where) > 0 {
		keys := make([]string, 0, len(f.Where))
		for k := range f.Where {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := f.Where[k]
			if v == nil {
				q = q.Where(clause.Eq{Column: clause.Column{Name: k}, Value: nil})
				continue
			}
			q = q.Where(map[string]any{k: v})
		}
	}
	if term := strings.TrimSpace(f.Search); term != "" && len(f.SearchColumns) > 0 {
		like := "%" + strings.ToLower(term) + "%"
		parts := make([]string, len(f.SearchColumns))
		args := make([]any, len(f.SearchColumns))
		for i, c := range f.SearchColumns {
			parts[i] = "lower(" + c + ") LIKE ?"
			args[i] = like
		}
		q = q.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	return q
}

func preload(q *gorm.DB, joins []string) *gorm.DB {
	for _, j := range joins {
		q = q.Preload(j)
	}
	return q
}

// Select returns every row matching f, eagerly loading the named associations.
func (t *Table[T]) Select(ctx context.Context, f Filter, joins ...string) ([]T, error) {
	q := preload(t.scoped(ctx, f), joins)
	if f.Order != "" {
		q = q.Order(f.Order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap("select", err)
	}
	return out, nil
}

// Count returns the number of rows matching f, ignoring order and paging.
func (t *Table[T]) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := t.scoped(ctx, f).Count(&n).Error; err != nil {
		return 0, wrap("count", err)
	}
	return n, nil
}

// Page returns one page of rows plus the unpaged total.
func (t *Table[T]) Page(ctx context.Context, f Filter, joins ...string) ([]T, int64, error) {
	total, err := t.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	rows, err := t.Select(ctx, f, joins...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Get fetches one row by primary key. A miss yields an error with CodeNotFound.
func (t *Table[T]) Get(ctx context.Context, id any, joins ...string) (*T, error) {
	var rec T
	q := preload(t.db.WithContext(ctx), joins)
	if err := q.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, wrap("get", err)
	}
	return &rec, nil
}

// FindOne fetches the first row matching f.
func (t *Table[T]) FindOne(ctx context.Context, f Filter, joins ...string) (*T, error) {
	var rec T
	if err := preload(t.scoped(ctx, f), joins).First(&rec).Error; err != nil {
		return nil, wrap("find", err)
	}
	return &rec, nil
}

// Insert creates rec; generated fields are written back into it.
func (t *Table[T]) Insert(ctx context.Context, rec *T) error {
	return wrap("insert", t.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error)
}

// Update writes payload to the row with the given id. A map updates only the
// listed columns; a *T replaces every column except id and created_at.
func (t *Table[T]) Update(ctx context.Context, id any, payload any) error {
	q := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id)
	if _, ok := payload.(map[string]any); !ok {
		q = q.Select("*").Omit("id", "created_at", clause.Associations)
	}
	res := q.Updates(payload)
	if res.Error != nil {
		return wrap("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update", gorm.ErrRecordNotFound)
	}
	return nil
}

// Upsert inserts rec or, when a row with the same conflict columns exists,
// overwrites it in place. The persisted row (with its original id) is read back
// into rec so repeated calls keep a stable id.
func (t *Table[T]) Upsert(ctx context.Context, rec *T, conflict ...string) error {
	cols := make([]clause.Column, len(conflict))
	keys := make([]any, len(conflict))
	for i, c := range conflict {
		cols[i] = clause.Column{Name: c}
		keys[i] = c
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: cols, UpdateAll: true}).
			Create(rec).Error
		if err != nil {
			return wrap("upsert", err)
		}
		var fresh T
		if len(keys) > 0 {
			err = tx.Where(rec, keys...).First(&fresh).Error
		} else {
			err = tx.First(&fresh, rec).Error
		}
		if err != nil {
			return wrap("upsert reload", err)
		}
		*rec = fresh
		return nil
	})
}

// Delete hard-deletes the row with the given id.
func (t *Table[T]) Delete(ctx context.Context, id any) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return wrap("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteWhere hard-deletes every row matching f.
func (t *Table[T]) DeleteWhere(ctx context.Context, f Filter) error {
	if len(f.Where) == 0 {
		return &Error{Code: CodeUnknown, Message: "refusing unscoped delete"}
	}
	q := t.db.WithContext(ctx)
	for k, v := range f.Where {
		q = q.Where(map[string]any{k: v})
	}
	return wrap("delete", q.Delete(new(T)).Error)
}
