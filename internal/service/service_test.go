package service

import (
	"sync"
	"testing"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/testdb"
	"go-storefront/internal/ws"
	"go-storefront/pkg/imagestore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	events  *recorder
	images  *imagestore.Store
	catalog CatalogService
	orders  OrderService
	users   UserService
	auth    AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	events := &recorder{}
	images := imagestore.New(t.TempDir())

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)

	return &fixture{
		db:      db,
		events:  events,
		images:  images,
		catalog: NewCatalogService(productRepo, db, images, events),
		orders: NewOrderService(db,
			repository.NewOrderRepo(db),
			repository.NewOrderItemRepo(db),
			repository.NewPickupPointRepo(db),
			productRepo,
			userRepo,
			events),
		users: NewUserService(db, userRepo),
		auth:  NewAuthService(userRepo, 0),
	}
}

func (f *fixture) addProduct(t *testing.T, article, name, supplier string, price int64) *model.Product {
	t.Helper()
	p, err := f.catalog.Create(&CreateProductRequest{
		Article:       article,
		Name:          name,
		Supplier:      supplier,
		Price:         decimal.NewFromInt(price),
		StockQuantity: 1,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) addOrder(t *testing.T, items ...OrderItemInput) *model.Order {
	t.Helper()
	o, err := f.orders.Create(&CreateOrderRequest{PickupPointAddress: "Main st 1"})
	require.NoError(t, err)
	if len(items) > 0 {
		_, err = f.orders.ReplaceOrderItems(o.ID, items)
		require.NoError(t, err)
	}
	return o
}
