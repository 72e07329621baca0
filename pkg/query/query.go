// Package query turns the common list parameters (filter, search, sort and
// pagination) into gorm clauses for a declared resource
package query

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var (
	ErrBadFilter = errors.New("filter must be a JSON object of scalar values")
	ErrBadPage   = errors.New("page and page_size must be bigger than 0")
)

// Params are the list parameters as they arrive in the query string
type Params struct {
	Filter   string `form:"filter"`
	Search   string `form:"search"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
	Page     *int   `form:"page"`
	PageSize *int   `form:"page_size"`
}

type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Resource declares which columns of a table may be filtered, sorted and searched
type Resource struct {
	table  string
	pk     string
	fields map[string]struct{}
	search []string
}

var schemaCache sync.Map

// NewResource checks every named column against the gorm schema of model.
// fields lists the columns accepted by filter and sort_by, search the text
// columns matched by search.
func NewResource(db *gorm.DB, model any, fields, search []string) (*Resource, error) {
	s, err := schema.Parse(model, &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema, %w", err)
	}

	if s.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("table %s has no primary key", s.Table)
	}

	r := &Resource{
		table:  s.Table,
		pk:     s.PrioritizedPrimaryField.DBName,
		fields: make(map[string]struct{}, len(fields)),
		search: search,
	}

	for _, f := range fields {
		if _, ok := s.FieldsByDBName[f]; !ok {
			return nil, fmt.Errorf("table %s has no column %q", s.Table, f)
		}
		r.fields[f] = struct{}{}
	}

	for _, f := range search {
		field, ok := s.FieldsByDBName[f]
		if !ok {
			return nil, fmt.Errorf("table %s has no column %q", s.Table, f)
		}
		if field.DataType != schema.String {
			return nil, fmt.Errorf("column %s.%s is not searchable", s.Table, f)
		}
	}

	return r, nil
}

// MustResource is NewResource for package level declarations
func MustResource(db *gorm.DB, model any, fields, search []string) *Resource {
	r, err := NewResource(db, model, fields, search)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Resource) column(name string) clause.Column {
	return clause.Column{Table: r.table, Name: name}
}

// Apply narrows tx down to the page described by p. Unknown filter and sort
// fields are ignored. A malformed filter returns ErrBadFilter and a page or
// page size below 1 returns ErrBadPage.
func (r *Resource) Apply(tx *gorm.DB, p Params, l Limits) (*gorm.DB, error) {
	page, size := 1, l.DefaultPageSize
	if p.Page != nil {
		page = *p.Page
	}
	if p.PageSize != nil {
		size = *p.PageSize
	}
	if page < 1 || size < 1 {
		return nil, ErrBadPage
	}
	if l.MaxPageSize > 0 && size > l.MaxPageSize {
		size = l.MaxPageSize
	}

	if strings.TrimSpace(p.Filter) != "" {
		conds, err := r.filter(p.Filter)
		if err != nil {
			return nil, err
		}
		if len(conds) > 0 {
			tx = tx.Where(clause.And(conds...))
		}
	}

	if p.Search != "" && len(r.search) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(p.Search)) + "%"

		parts := make([]string, len(r.search))
		args := make([]any, 0, len(r.search)*2)
		for i, col := range r.search {
			parts[i] = `LOWER(?) LIKE ? ESCAPE '\'`
			args = append(args, r.column(col), pattern)
		}

		tx = tx.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	sortedByPK := false
	if _, ok := r.fields[p.SortBy]; ok {
		tx = tx.Order(clause.OrderByColumn{
			Column: r.column(p.SortBy),
			Desc:   strings.EqualFold(p.Order, "desc"),
		})
		sortedByPK = p.SortBy == r.pk
	}

	// Ties are broken by the primary key so equal parameters give equal pages
	if !sortedByPK {
		tx = tx.Order(clause.OrderByColumn{Column: r.column(r.pk)})
	}

	return tx.Offset((page - 1) * size).Limit(size), nil
}

func (r *Resource) filter(raw string) ([]clause.Expression, error) {
	if !gjson.Valid(raw) {
		return nil, ErrBadFilter
	}

	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, ErrBadFilter
	}

	var conds []clause.Expression
	var bad bool

	doc.ForEach(func(key, value gjson.Result) bool {
		if _, ok := r.fields[key.String()]; !ok {
			return true
		}

		col := r.column(key.String())

		if value.IsArray() {
			var values []any
			for _, v := range value.Array() {
				s, ok := scalar(v)
				if !ok || s == nil {
					bad = true
					return false
				}
				values = append(values, s)
			}
			conds = append(conds, clause.IN{Column: col, Values: values})
			return true
		}

		s, ok := scalar(value)
		if !ok {
			bad = true
			return false
		}

		conds = append(conds, clause.Eq{Column: col, Value: s})
		return true
	})

	if bad {
		return nil, ErrBadFilter
	}

	return conds, nil
}

// scalar converts a JSON value into something the driver can bind. Integral
// numbers become int64 so they compare equal to integer columns.
func scalar(v gjson.Result) (any, bool) {
	switch v.Type {
	case gjson.Null:
		return nil, true
	case gjson.True, gjson.False:
		return v.Bool(), true
	case gjson.String:
		return v.Str, true
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return int64(v.Num), true
		}
		return v.Num, true
	default:
		return nil, false
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Find runs the query for resource r and returns the page, never nil
func Find[T any](tx *gorm.DB, r *Resource, p Params, l Limits) ([]T, error) {
	q, err := r.Apply(tx.Model(new(T)), p, l)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}
