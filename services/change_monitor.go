package services

import (
	"context"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// Broadcaster receives full snapshots of a feed.
type Broadcaster interface {
	BroadcastOrders(orders []models.Order)
	BroadcastSessions(sessions []models.ActiveSession)
	BroadcastWaiterCalls(calls []models.WaiterCall)
	BroadcastMenu(items []models.MenuItem)
}

// ChangeMonitor drains the change log and pushes one fresh snapshot per
// touched feed to websocket subscribers. Clients that only poll are not
// affected.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      Broadcaster
	Orders   *OrderService
	Sessions *SessionService
	Calls    *WaiterCallService
	Menu     *MenuService
	StopChan chan struct{}
	Interval time.Duration
	BatchMax int
}

func NewChangeMonitor(db *gorm.DB, hub Broadcaster, orders *OrderService, sessions *SessionService, calls *WaiterCallService, menu *MenuService) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Hub:      hub,
		Orders:   orders,
		Sessions: sessions,
		Calls:    calls,
		Menu:     menu,
		StopChan: make(chan struct{}),
		Interval: time.Second,
		BatchMax: 100,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.CheckChanges(context.Background())
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

// CheckChanges processes one batch and returns the feeds that were broadcast.
func (cm *ChangeMonitor) CheckChanges(ctx context.Context) []string {
	var changes []models.DBChange

	err := cm.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("processed = ?", false).
			Order("id ASC").
			Limit(cm.BatchMax).
			Find(&changes).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(changes))
		for _, c := range changes {
			ids = append(ids, c.ID)
		}
		return tx.Model(&models.DBChange{}).Where("id IN ?", ids).Update("processed", true).Error
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Error fetching changes: %v", err)
		return nil
	}
	if len(changes) == 0 {
		return nil
	}

	feeds := make([]string, 0, 4)
	seen := make(map[string]bool)
	for _, c := range changes {
		if !seen[c.Feed] {
			seen[c.Feed] = true
			feeds = append(feeds, c.Feed)
		}
	}

	for _, feed := range feeds {
		cm.broadcastFeed(ctx, feed)
	}
	utils.InfoLogger.Debugf("Processed %d changes across %v", len(changes), feeds)
	return feeds
}

func (cm *ChangeMonitor) broadcastFeed(ctx context.Context, feed string) {
	switch feed {
	case models.FeedOrders:
		orders, err := cm.Orders.ListActive(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Error loading orders snapshot: %v", err)
			return
		}
		cm.Hub.BroadcastOrders(orders)
	case models.FeedSessions:
		sessions, err := cm.Sessions.List(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Error loading sessions snapshot: %v", err)
			return
		}
		cm.Hub.BroadcastSessions(sessions)
	case models.FeedWaiterCalls:
		calls, err := cm.Calls.Pending(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Error loading waiter calls snapshot: %v", err)
			return
		}
		cm.Hub.BroadcastWaiterCalls(calls)
	case models.FeedMenu:
		items, err := cm.Menu.ActiveMenu(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("Error loading menu snapshot: %v", err)
			return
		}
		cm.Hub.BroadcastMenu(items)
	default:
		utils.ErrorLogger.Warnf("Unknown change feed %q", feed)
	}
}

// Purge deletes processed change rows older than maxAge.
func (cm *ChangeMonitor) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	res := cm.DB.WithContext(ctx).
		Where("processed = ? AND changed_at < ?", true, time.Now().Add(-maxAge)).
		Delete(&models.DBChange{})
	return res.RowsAffected, res.Error
}
