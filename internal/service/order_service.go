package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/ws"
	"go-storefront/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrPickupPointNotFound = errors.New("pickup point not found")
	ErrPurchaserNotFound   = errors.New("purchaser not found")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrUnknownProduct      = errors.New("order item references an unknown product")
)

type OrderService interface {
	ListAll() ([]model.Order, error)
	GetByID(id uint) (*model.Order, error)
	Create(req *CreateOrderRequest) (*model.Order, error)
	Update(id uint, req *UpdateOrderRequest) (*model.Order, error)
	Delete(id uint) error
	ListPickupPoints() ([]model.PickupPoint, error)
	GetOrderItems(orderID uint) ([]model.OrderItem, error)
	ReplaceOrderItems(orderID uint, items []OrderItemInput) ([]model.OrderItem, error)
}

// CreateOrderRequest places an order. PickupPointAddress is used only when
// PickupPointID is nil; an unknown address creates a new pickup point.
type CreateOrderRequest struct {
	UserID             *uint      `json:"user_id"`
	OrderDate          time.Time  `json:"order_date"`
	DeliveryDate       *time.Time `json:"delivery_date"`
	PickupPointID      *uint      `json:"pickup_point_id"`
	PickupPointAddress string     `json:"pickup_point_address" validate:"max=255"`
	ReceiveCode        *int       `json:"receive_code" validate:"omitnil,min=0,max=9999"`
	Status             string     `json:"status" validate:"max=20"`
}

// UpdateOrderRequest carries only the fields to change. UserID 0 detaches the
// purchaser; an empty address with no PickupPointID clears the pickup point.
type UpdateOrderRequest struct {
	UserID             *uint      `json:"user_id"`
	OrderDate          *time.Time `json:"order_date"`
	DeliveryDate       *time.Time `json:"delivery_date"`
	PickupPointID      *uint      `json:"pickup_point_id"`
	PickupPointAddress *string    `json:"pickup_point_address" validate:"omitnil,max=255"`
	ReceiveCode        *int       `json:"receive_code" validate:"omitnil,min=0,max=9999"`
	Status             *string    `json:"status" validate:"omitnil,notblank,max=20"`
}

type OrderItemInput struct {
	ProductArticle string `json:"product_article" validate:"required,article"`
	Quantity       int    `json:"quantity"`
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	itemRepo    repository.OrderItemRepository
	pointRepo   repository.PickupPointRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	events      Publisher
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	pointRepo repository.PickupPointRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	events Publisher,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		pointRepo:   pointRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      publisherOrNop(events),
	}
}

func (s *orderService) ListAll() ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		log.Printf("orders: failed to list orders: %v", err)
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetByID(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

// resolvePickupPoint returns the id to store on the order. An explicit id must
// exist; otherwise a non-blank address is found or created. Both empty means
// no pickup point.
func resolvePickupPoint(points repository.PickupPointRepository, id *uint, address string) (*uint, error) {
	if id != nil {
		if _, err := points.FindByID(*id); err != nil {
			return nil, notFound(err, ErrPickupPointNotFound)
		}
		return id, nil
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	point, err := points.FirstOrCreate(address)
	if err != nil {
		return nil, fmt.Errorf("resolve pickup point %q: %w", address, err)
	}
	return &point.ID, nil
}

func checkPurchaser(users repository.UserRepository, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := users.FindByID(*id); err != nil {
		return notFound(err, ErrPurchaserNotFound)
	}
	return nil
}

func (s *orderService) Create(req *CreateOrderRequest) (*model.Order, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:       req.UserID,
		OrderDate:    req.OrderDate,
		DeliveryDate: req.DeliveryDate,
		ReceiveCode:  req.ReceiveCode,
		Status:       strings.TrimSpace(req.Status),
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if order.Status == "" {
		order.Status = model.StatusNew
	}

	var created *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkPurchaser(s.userRepo.WithTx(tx), req.UserID); err != nil {
			return err
		}

		pointID, err := resolvePickupPoint(s.pointRepo.WithTx(tx), req.PickupPointID, req.PickupPointAddress)
		if err != nil {
			return err
		}
		order.PickupPointID = pointID

		orders := s.orderRepo.WithTx(tx)
		if err := orders.Create(order); err != nil {
			return err
		}

		created, err = orders.FindByID(order.ID)
		return err
	})
	if err != nil {
		if !isOrderInputError(err) {
			log.Printf("orders: failed to create order: %v", err)
		}
		return nil, err
	}

	s.publish("order_created", created, fmt.Sprintf("order #%d created", created.ID))
	return created, nil
}

func (s *orderService) Update(id uint, req *UpdateOrderRequest) (*model.Order, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var updated *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		exists, err := orders.Exists(id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}

		changes := map[string]interface{}{}
		switch {
		case req.UserID == nil:
		case *req.UserID == 0:
			changes["user_id"] = nil
		default:
			if err := checkPurchaser(s.userRepo.WithTx(tx), req.UserID); err != nil {
				return err
			}
			changes["user_id"] = *req.UserID
		}
		if req.PickupPointID != nil || req.PickupPointAddress != nil {
			address := ""
			if req.PickupPointAddress != nil {
				address = *req.PickupPointAddress
			}
			pointID, err := resolvePickupPoint(s.pointRepo.WithTx(tx), req.PickupPointID, address)
			if err != nil {
				return err
			}
			if pointID != nil {
				changes["pickup_point_id"] = *pointID
			} else {
				changes["pickup_point_id"] = nil
			}
		}
		if req.OrderDate != nil && !req.OrderDate.IsZero() {
			changes["order_date"] = *req.OrderDate
		}
		if req.DeliveryDate != nil {
			changes["delivery_date"] = *req.DeliveryDate
		}
		if req.ReceiveCode != nil {
			changes["receive_code"] = *req.ReceiveCode
		}
		if req.Status != nil {
			changes["status"] = strings.TrimSpace(*req.Status)
		}

		if err := orders.Update(id, changes); err != nil {
			return err
		}

		updated, err = orders.FindByID(id)
		return err
	})
	if err != nil {
		if !isOrderInputError(err) {
			log.Printf("orders: failed to update order %d: %v", id, err)
		}
		return nil, err
	}

	s.publish("order_updated", updated, fmt.Sprintf("order #%d updated", id))
	return updated, nil
}

func (s *orderService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		exists, err := orders.Exists(id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}

		if err := s.itemRepo.WithTx(tx).DeleteByOrderID(id); err != nil {
			return err
		}
		return orders.Delete(id)
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			log.Printf("orders: failed to delete order %d: %v", id, err)
		}
		return err
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeOrderUpdate,
		Action:  "order_deleted",
		Data:    map[string]uint{"id": id},
		Message: fmt.Sprintf("order #%d deleted", id),
	})
	return nil
}

func (s *orderService) ListPickupPoints() ([]model.PickupPoint, error) {
	points, err := s.pointRepo.FindAll()
	if err != nil {
		log.Printf("orders: failed to list pickup points: %v", err)
		return nil, err
	}
	return points, nil
}

func (s *orderService) GetOrderItems(orderID uint) ([]model.OrderItem, error) {
	exists, err := s.orderRepo.Exists(orderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOrderNotFound
	}
	return s.itemRepo.FindByOrderID(orderID)
}

// mergeItems validates the input and sums quantities of repeated articles,
// keeping first-seen order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	merged := make([]OrderItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		it.ProductArticle = strings.TrimSpace(it.ProductArticle)
		if err := validator.Check(&it); err != nil {
			return nil, err
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[it.ProductArticle]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductArticle] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// ReplaceOrderItems swaps the whole item set of an order. Nothing changes
// unless every item is valid.
func (s *orderService) ReplaceOrderItems(orderID uint, items []OrderItemInput) ([]model.OrderItem, error) {
	merged, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	var result []model.OrderItem
	err = s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.orderRepo.WithTx(tx).Exists(orderID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}

		products := s.productRepo.WithTx(tx)
		rows := make([]model.OrderItem, len(merged))
		for i, it := range merged {
			if _, err := products.FindByArticle(it.ProductArticle); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductArticle)
				}
				return err
			}
			rows[i] = model.OrderItem{
				OrderID:        orderID,
				ProductArticle: it.ProductArticle,
				Quantity:       it.Quantity,
			}
		}

		itemRepo := s.itemRepo.WithTx(tx)
		if err := itemRepo.DeleteByOrderID(orderID); err != nil {
			return err
		}
		if err := itemRepo.CreateBatch(rows); err != nil {
			return err
		}

		result, err = itemRepo.FindByOrderID(orderID)
		return err
	})
	if err != nil {
		if !isOrderInputError(err) {
			log.Printf("orders: failed to replace items of order %d: %v", orderID, err)
		}
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeOrderUpdate,
		Action:  "order_items_replaced",
		Data:    map[string]interface{}{"id": orderID, "items": result},
		Message: fmt.Sprintf("items of order #%d replaced", orderID),
	})
	return result, nil
}

func (s *orderService) publish(action string, order *model.Order, msg string) {
	s.events.Publish(ws.Event{
		Type:    ws.TypeOrderUpdate,
		Action:  action,
		Data:    order.ToResponse(),
		Message: msg,
	})
}

func isOrderInputError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPickupPointNotFound) ||
		errors.Is(err, ErrPurchaserNotFound) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, validator.ErrValidation)
}
