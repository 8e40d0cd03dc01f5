package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

type MenuItemInput struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url"`
	Category    string  `json:"category" binding:"required,max=100"`
	Active      *bool   `json:"active"`
}

type MenuService struct {
	DB    *gorm.DB
	Cache Cache
}

func NewMenuService(db *gorm.DB, cache Cache) *MenuService {
	return &MenuService{DB: db, Cache: cache}
}

// ActiveMenu is what tables browse: active items ordered by name.
func (s *MenuService) ActiveMenu(ctx context.Context) ([]models.MenuItem, error) {
	return cached(ctx, s.Cache, cacheKeyActiveMenu, func() ([]models.MenuItem, error) {
		items := make([]models.MenuItem, 0)
		if err := s.DB.WithContext(ctx).Where("active = ?", true).Order("name").Find(&items).Error; err != nil {
			return nil, utils.NewStorageError(err)
		}
		return items, nil
	})
}

// All lists every item for the admin, newest first.
func (s *MenuService) All(ctx context.Context) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0)
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return items, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{Active: true}
	applyMenuInput(&item, in)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedMenu, item.ID, actionInsert)
	})
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	invalidate(ctx, s.Cache, cacheKeyActiveMenu)
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, id string, in MenuItemInput) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		applyMenuInput(&item, in)
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedMenu, item.ID, actionUpdate)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	invalidate(ctx, s.Cache, cacheKeyActiveMenu)
	return &item, nil
}

func applyMenuInput(item *models.MenuItem, in MenuItemInput) {
	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price
	item.ImageURL = in.ImageURL
	item.Category = strings.TrimSpace(in.Category)
	if in.Active != nil {
		item.Active = *in.Active
	}
}

// ToggleActive flips the availability of an item.
func (s *MenuService) ToggleActive(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		item.Active = !item.Active
		if err := tx.Model(&item).Update("active", item.Active).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedMenu, item.ID, actionUpdate)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	invalidate(ctx, s.Cache, cacheKeyActiveMenu)
	return &item, nil
}

// Delete refuses items still referenced by order items; deactivate those instead.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return utils.ErrConflict
		}
		res := tx.Where("id = ?", id).Delete(&models.MenuItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return recordChange(tx, models.FeedMenu, id, actionDelete)
	})
	if err != nil {
		return serviceError(err)
	}
	invalidate(ctx, s.Cache, cacheKeyActiveMenu)
	return nil
}

// Categories returns the menu categories in display order: saved positions
// first, then categories not yet positioned in order of first appearance.
// With persist set, the missing ones are saved after the existing positions.
func (s *MenuService) Categories(ctx context.Context, activeOnly, persist bool) ([]string, error) {
	var items []models.MenuItem
	var err error
	if activeOnly {
		items, err = s.ActiveMenu(ctx)
	} else {
		items, err = s.All(ctx)
	}
	if err != nil {
		return nil, err
	}

	var saved []models.CategoryOrder
	if err := s.DB.WithContext(ctx).Order("position ASC").Find(&saved).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}

	present := make(map[string]bool)
	all := make([]string, 0)
	for _, it := range items {
		if !present[it.Category] {
			present[it.Category] = true
			all = append(all, it.Category)
		}
	}

	ordered := make([]string, 0, len(all))
	placed := make(map[string]bool)
	for _, co := range saved {
		if present[co.Category] && !placed[co.Category] {
			placed[co.Category] = true
			ordered = append(ordered, co.Category)
		}
	}

	known := make(map[string]bool, len(saved))
	for _, co := range saved {
		known[co.Category] = true
	}
	var missing []models.CategoryOrder
	for _, c := range all {
		if placed[c] {
			continue
		}
		ordered = append(ordered, c)
		if !known[c] {
			missing = append(missing, models.CategoryOrder{Category: c, Position: len(saved) + len(missing)})
		}
	}

	if persist && len(missing) > 0 {
		if err := s.DB.WithContext(ctx).Create(&missing).Error; err != nil {
			utils.ErrorLogger.Warnf("Saving new category positions: %v", err)
		}
	}
	return ordered, nil
}

// SaveCategoryOrder replaces the saved order with categories.
func (s *MenuService) SaveCategoryOrder(ctx context.Context, categories []string) error {
	rows := make([]models.CategoryOrder, 0, len(categories))
	seen := make(map[string]bool)
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		rows = append(rows, models.CategoryOrder{Category: c, Position: len(rows)})
	}
	if len(rows) == 0 {
		return utils.ErrInvalidPayload
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CategoryOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedMenu, "categories", actionUpdate)
	})
	if err != nil {
		return utils.NewStorageError(err)
	}
	return nil
}
