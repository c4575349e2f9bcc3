package service

import (
	"fmt"
	"testing"
	"time"

	"go-storefront/internal/model"
	"go-storefront/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderDefaults(t *testing.T) {
	f := newFixture(t)

	before := time.Now().Add(-time.Second)
	order, err := f.orders.Create(&CreateOrderRequest{PickupPointAddress: "  Main st 1  "})
	require.NoError(t, err)

	assert.Equal(t, model.StatusNew, order.Status)
	assert.True(t, order.OrderDate.After(before))
	require.NotNil(t, order.PickupPoint)
	assert.Equal(t, "Main st 1", order.PickupPoint.Address)
	assert.Equal(t, fmt.Sprintf("ORD-%d", order.ID), order.Article())
	assert.Equal(t, []string{"order_created"}, f.events.actions())
}

func TestPickupAddressResolutionIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)

	first, err := f.orders.Create(&CreateOrderRequest{PickupPointAddress: "Main St 1"})
	require.NoError(t, err)
	second, err := f.orders.Create(&CreateOrderRequest{PickupPointAddress: "MAIN ST 1"})
	require.NoError(t, err)

	address := "main st 1"
	updated, err := f.orders.Update(first.ID, &UpdateOrderRequest{PickupPointAddress: &address})
	require.NoError(t, err)

	points, err := f.orders.ListPickupPoints()
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, points[0].ID, *second.PickupPointID)
	assert.Equal(t, points[0].ID, *updated.PickupPointID)
}

func TestCreateOrderRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)

	missing := uint(42)
	_, err := f.orders.Create(&CreateOrderRequest{PickupPointID: &missing})
	assert.ErrorIs(t, err, ErrPickupPointNotFound)

	_, err = f.orders.Create(&CreateOrderRequest{UserID: &missing})
	assert.ErrorIs(t, err, ErrPurchaserNotFound)

	for _, code := range []int{-1, 10000} {
		code := code
		_, err = f.orders.Create(&CreateOrderRequest{ReceiveCode: &code})
		assert.ErrorIs(t, err, validator.ErrValidation, "receive code %d", code)
	}

	orders, err := f.orders.ListAll()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture(t)
	order := f.addOrder(t)

	status := model.StatusDelivered
	code := 512
	delivery := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.orders.Update(order.ID, &UpdateOrderRequest{Status: &status, ReceiveCode: &code, DeliveryDate: &delivery})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, updated.Status)
	assert.True(t, updated.IsTerminal())
	require.NotNil(t, updated.ReceiveCode)
	assert.Equal(t, 512, *updated.ReceiveCode)
	require.NotNil(t, updated.PickupPoint, "untouched fields stay")

	_, err = f.orders.Update(order.ID+1, &UpdateOrderRequest{Status: &status})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	tooLong := 12345
	_, err = f.orders.Update(order.ID, &UpdateOrderRequest{ReceiveCode: &tooLong})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestUpdateOrderPurchaser(t *testing.T) {
	f := newFixture(t)
	buyer := f.addUser(t, "buyer", "secret1", "client")
	order := f.addOrder(t)

	id := buyer.ID
	updated, err := f.orders.Update(order.ID, &UpdateOrderRequest{UserID: &id})
	require.NoError(t, err)
	require.NotNil(t, updated.UserID)
	assert.Equal(t, buyer.ID, *updated.UserID)

	missing := buyer.ID + 100
	_, err = f.orders.Update(order.ID, &UpdateOrderRequest{UserID: &missing})
	assert.ErrorIs(t, err, ErrPurchaserNotFound)

	none := uint(0)
	updated, err = f.orders.Update(order.ID, &UpdateOrderRequest{UserID: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.UserID)
	assert.NotNil(t, updated.PickupPointID, "other fields stay")
}

func TestReplaceOrderItems(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	f.addProduct(t, "B", "Blue Shoe", "Acme", 100)
	order := f.addOrder(t, OrderItemInput{ProductArticle: "A", Quantity: 1})

	items, err := f.orders.ReplaceOrderItems(order.ID, []OrderItemInput{
		{ProductArticle: "B", Quantity: 2},
		{ProductArticle: "A", Quantity: 1},
		{ProductArticle: "B", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].ProductArticle)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "A", items[1].ProductArticle)

	got, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "B×5, A×1", got.Article())
	assert.Equal(t, "800", got.Total().String())

	items, err = f.orders.ReplaceOrderItems(order.ID, []OrderItemInput{})
	require.NoError(t, err)
	assert.Empty(t, items)

	left, err := f.orders.GetOrderItems(order.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestReplaceOrderItemsIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	order := f.addOrder(t, OrderItemInput{ProductArticle: "A", Quantity: 4})

	_, err := f.orders.ReplaceOrderItems(order.ID, []OrderItemInput{
		{ProductArticle: "A", Quantity: 1},
		{ProductArticle: "NOPE", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = f.orders.ReplaceOrderItems(order.ID, []OrderItemInput{{ProductArticle: "A", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.orders.ReplaceOrderItems(order.ID+1, []OrderItemInput{{ProductArticle: "A", Quantity: 1}})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	items, err := f.orders.GetOrderItems(order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	order := f.addOrder(t, OrderItemInput{ProductArticle: "A", Quantity: 1})

	require.NoError(t, f.orders.Delete(order.ID))
	_, err := f.orders.GetByID(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, f.orders.Delete(order.ID), ErrOrderNotFound)

	ok, err := f.catalog.CanDelete("A")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.orders.GetOrderItems(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
