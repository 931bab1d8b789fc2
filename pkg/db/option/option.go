// Package option provides composable query options for the generic store.
package option

import "gorm.io/gorm"

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WhereNull restricts the query to rows where the column is NULL.
func WhereNull(column string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(column + " IS NULL")
	})
}

// WhereNotNull restricts the query to rows where the column is set.
func WhereNotNull(column string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(column + " IS NOT NULL")
	})
}

// Where adds an arbitrary condition.
func Where(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// OrderBy sets the result ordering.
func OrderBy(expr string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	})
}

// Limit caps the result size.
func Limit(n int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	})
}
