// Package testutil builds throwaway dependencies for tests
package testutil

import (
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/db"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())

	conn, err := db.New(config.Database{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// Outbox records every notification it is given, as a Dispatcher or a Mailer
type Outbox struct {
	mu   sync.Mutex
	sent []service.Notification
	// Fail makes Send return an error after recording the attempt
	Fail bool
}

func (o *Outbox) Dispatch(_ context.Context, n service.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, n)
}

func (o *Outbox) Send(ctx context.Context, n service.Notification) error {
	o.Dispatch(ctx, n)
	if o.Fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (o *Outbox) Sent() []service.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]service.Notification(nil), o.sent...)
}

// Fixtures creates rows with sensible defaults for the fields a test doesn't care about
type Fixtures struct {
	T  testing.TB
	DB *gorm.DB
	n  int
}

func (f *Fixtures) User(role uint, verified bool) *model.User {
	f.T.Helper()
	f.n++

	u := &model.User{
		Email:          fmt.Sprintf("user%d@example.com", f.n),
		RoleID:         role,
		HashedPassword: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		Username:       fmt.Sprintf("user%d", f.n),
		IsVerified:     verified,
	}
	require.NoError(f.T, f.DB.Create(u).Error)
	return u
}

func (f *Fixtures) Category(name string) *model.Category {
	f.T.Helper()

	c := &model.Category{Name: name, IsActive: true}
	require.NoError(f.T, f.DB.Create(c).Error)
	return c
}

func (f *Fixtures) Product(categoryID uint, name string, price int64, available bool) *model.Product {
	f.T.Helper()

	p := &model.Product{Name: name, Price: price, CategoryID: categoryID, IsAvailable: available}
	require.NoError(f.T, f.DB.Create(p).Error)
	return p
}

func (f *Fixtures) CartItem(userID, productID uint, quantity int) *model.Cart {
	f.T.Helper()

	c := &model.Cart{UserID: userID, ProductID: productID, Quantity: quantity}
	require.NoError(f.T, f.DB.Create(c).Error)
	return c
}
