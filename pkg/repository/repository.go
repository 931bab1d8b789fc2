// Package repository provides a generic gorm-backed record store used by
// every entity collection: filtered listing, inserts, keyed and bulk
// updates, and counting.
package repository

import (
	"context"

	"github.com/tallyworks/tally/pkg/db/option"
	"gorm.io/gorm"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	BatchCreate(ctx context.Context, resources []*T) error
	Update(ctx context.Context, resourceID any, patch any) error
	UpdateWhere(ctx context.Context, query *T, patch any, opts ...option.QueryOption) (int64, error)
	Delete(ctx context.Context, resourceID any) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}
