package internal

import (
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/query"
	"bitwise74/shop-api/pkg/security"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectStore keeps product images. aws.S3Client implements it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, keys ...string) error
}

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Tokens   *security.Tokens
	Notifier service.Dispatcher
	// Images is nil when storage is disabled
	Images ObjectStore
	Lists  *Lists
}

// Lists declares which columns each list endpoint may filter, sort and search
type Lists struct {
	Limits     query.Limits
	Categories *query.Resource
	Products   *query.Resource
	Orders     *query.Resource
	Users      *query.Resource
}

func NewLists(db *gorm.DB, l config.List) (*Lists, error) {
	var err error
	out := &Lists{Limits: query.Limits{DefaultPageSize: l.DefaultPageSize, MaxPageSize: l.MaxPageSize}}

	out.Categories, err = query.NewResource(db, &model.Category{},
		[]string{"id", "name", "description", "is_active"},
		[]string{"name", "description"})
	if err != nil {
		return nil, fmt.Errorf("categories, %w", err)
	}

	out.Products, err = query.NewResource(db, &model.Product{},
		[]string{"id", "name", "price", "category_id", "description", "is_available"},
		[]string{"name", "description"})
	if err != nil {
		return nil, fmt.Errorf("products, %w", err)
	}

	out.Orders, err = query.NewResource(db, &model.Order{},
		[]string{"id", "user_id", "total_price", "status", "created_at"},
		[]string{"status"})
	if err != nil {
		return nil, fmt.Errorf("orders, %w", err)
	}

	out.Users, err = query.NewResource(db, &model.User{},
		[]string{"id", "email", "role_id", "username", "first_name", "last_name", "phone", "is_verified", "created_at"},
		[]string{"username", "first_name", "last_name", "email", "phone"})
	if err != nil {
		return nil, fmt.Errorf("users, %w", err)
	}

	return out, nil
}

// RemoveImages deletes product images after the rows pointing at them are
// gone. Failures only leave orphaned objects behind, so they are logged.
func (d *Deps) RemoveImages(ctx context.Context, keys []string) {
	if d.Images == nil || len(keys) == 0 {
		return
	}

	if err := d.Images.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		zap.L().Error("Failed to delete product images", zap.Error(err), zap.Strings("keys", keys))
	}
}
