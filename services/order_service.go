package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout.
var PaymentMethods = []string{"pix", "dinheiro", "cartao_credito", "cartao_debito"}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID   string
	Username string
	Role     models.Role
}

type OrderItemInput struct {
	MenuItemID string   `json:"menu_item_id" binding:"required"`
	Quantity   int      `json:"quantity" binding:"required,gt=0"`
	Price      *float64 `json:"price" binding:"omitempty,gte=0"`
}

type PlaceOrderInput struct {
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Total         *float64         `json:"total" binding:"omitempty,gte=0"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=pix dinheiro cartao_credito cartao_debito"`
	Observations  *string          `json:"observations" binding:"omitempty,max=500"`
}

type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderItems").Preload("OrderItems.MenuItem").Preload("AssignedEmployee")
}

// PlaceOrder inserts the order header and its items in one transaction.
// The client total is kept as sent; it is only computed here when missing.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, utils.ErrInvalidPayload
	}
	if in.PaymentMethod != nil && !validPaymentMethod(*in.PaymentMethod) {
		return nil, utils.ErrInvalidPayload
	}

	order := models.Order{
		UserID:        actor.UserID,
		Status:        models.StatusPending,
		PaymentMethod: in.PaymentMethod,
		Observations:  in.Observations,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.MenuItemID)
		}
		var menu []models.MenuItem
		if err := tx.Where("id IN ? AND active = ?", ids, true).Find(&menu).Error; err != nil {
			return err
		}
		prices := make(map[string]float64, len(menu))
		for _, m := range menu {
			prices[m.ID] = m.Price
		}

		var computed float64
		for _, it := range in.Items {
			menuPrice, ok := prices[it.MenuItemID]
			if !ok || it.Quantity <= 0 {
				return utils.ErrInvalidPayload
			}
			price := menuPrice
			if it.Price != nil {
				price = *it.Price
			}
			item := models.OrderItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Price: price}
			computed += item.Subtotal()
			order.OrderItems = append(order.OrderItems, item)
		}

		order.Total = utils.RoundMoney(computed)
		if in.Total != nil {
			order.Total = *in.Total
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedOrders, order.ID, actionInsert)
	})
	if err != nil {
		return nil, serviceError(err)
	}

	utils.InfoLogger.Printf("Order %s placed by table %s (total %.2f)", order.ID, actor.Username, order.Total)
	return s.load(ctx, order.ID)
}

func validPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Scopes(withOrderDetails).Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &order, nil
}

// ListActive returns every non-hidden order, newest first.
func (s *OrderService) ListActive(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.DB.WithContext(ctx).Scopes(withOrderDetails).
		Preload("User").
		Where("hidden = ?", false).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return orders, nil
}

// ListForUser returns a table's own non-hidden orders.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.DB.WithContext(ctx).Scopes(withOrderDetails).
		Where("user_id = ? AND hidden = ?", userID, false).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return orders, nil
}

// Get returns one order. Tables only see their own orders.
func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && order.UserID != actor.UserID {
		return nil, utils.ErrNotFound
	}
	return order, nil
}

// Transition applies action to the order. The update is conditional on the
// status read, so a concurrent change makes it fail with
// ErrInvalidTransition instead of overwriting.
func (s *OrderService) Transition(ctx context.Context, actor Actor, id string, action models.OrderAction) (*models.Order, error) {
	staff := actor.Role.IsStaff()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("id = ?", id).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !staff && order.UserID != actor.UserID {
			return utils.ErrNotFound
		}

		next, err := models.NextStatus(order.Status, staff, action)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		}
		if staff && models.AssignsEmployee(action) && order.AssignedTo == nil {
			if s.employeeExists(tx, actor.UserID) {
				updates["assigned_to"] = gorm.Expr("COALESCE(assigned_to, ?)", actor.UserID)
			} else {
				utils.ErrorLogger.Warnf("Employee %s not found, order %s left unassigned", actor.UserID, order.ID)
			}
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrInvalidTransition
		}

		utils.InfoLogger.Printf("Order %s: %s -> %s by %s", order.ID, order.Status, next, actor.Username)
		return recordChange(tx, models.FeedOrders, order.ID, actionUpdate)
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return s.load(ctx, id)
}

func (s *OrderService) employeeExists(tx *gorm.DB, userID string) bool {
	var count int64
	err := tx.Model(&models.User{}).
		Where("id = ? AND (is_employee = ? OR is_admin = ?)", userID, true, true).
		Count(&count).Error
	return err == nil && count > 0
}

// Hide soft-deletes a terminal order from every listing. Reports still count it.
func (s *OrderService) Hide(ctx context.Context, actor Actor, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("id = ?", id).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}
		if !actor.Role.IsStaff() && order.UserID != actor.UserID {
			return utils.ErrNotFound
		}
		if err := models.CanHide(order.Status); err != nil {
			return err
		}
		if order.Hidden {
			return nil
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{"hidden": true, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedOrders, order.ID, actionUpdate)
	})
	return serviceError(err)
}

// HideTerminalForTable clears a table's finished orders from the dashboards.
// Orders still in progress stay visible.
func (s *OrderService) HideTerminalForTable(ctx context.Context, tableID string) (int64, error) {
	var hidden int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.User
		err := tx.Scopes(roleScope(models.RoleCustomer)).Where("id = ?", tableID).First(&table).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("user_id = ? AND hidden = ? AND status IN ?", table.ID, false,
				[]models.OrderStatus{models.StatusCompleted, models.StatusCancelled}).
			Updates(map[string]interface{}{"hidden": true, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		hidden = res.RowsAffected
		if hidden == 0 {
			return nil
		}
		return recordChange(tx, models.FeedOrders, table.ID, actionUpdate)
	})
	if err != nil {
		return 0, serviceError(err)
	}
	utils.InfoLogger.Printf("Hid %d finished orders of table %s", hidden, tableID)
	return hidden, nil
}

// ClearAll removes every order, order item and waiter call.
func (s *OrderService) ClearAll(ctx context.Context) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.OrderItem{}, &models.Order{}, &models.WaiterCall{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := recordChange(tx, models.FeedOrders, "*", actionDelete); err != nil {
			return err
		}
		return recordChange(tx, models.FeedWaiterCalls, "*", actionDelete)
	})
	if err != nil {
		return utils.NewStorageError(err)
	}
	utils.InfoLogger.Println("All orders and waiter calls cleared")
	return nil
}

// serviceError passes domain errors through and wraps everything else.
func serviceError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		utils.ErrInvalidPayload, utils.ErrInvalidCredentials, utils.ErrForbidden,
		utils.ErrNotFound, utils.ErrDuplicateUsername, utils.ErrConflict,
		models.ErrInvalidTransition,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return utils.NewStorageError(err)
}
