package services

import (
	"context"
	"sort"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

const (
	unknownItemName    = "Item desconhecido"
	paymentNotInformed = "Não informado"
	topItemsLimit      = 5
)

type EmployeePerformance struct {
	UserID            string  `json:"userId"`
	Username          string  `json:"username"`
	TotalOrders       int     `json:"totalOrders"`
	CompletedOrders   int     `json:"completedOrders"`
	CancelledOrders   int     `json:"cancelledOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

type ItemSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type PaymentSummary struct {
	Method string  `json:"method"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

type EmployeeDaily struct {
	UserID          string  `json:"userId"`
	Username        string  `json:"username"`
	CompletedOrders int     `json:"completedOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

type DailyReport struct {
	Date           string           `json:"date"`
	TotalOrders    int              `json:"totalOrders"`
	TotalRevenue   float64          `json:"totalRevenue"`
	TopItems       []ItemSales      `json:"topItems"`
	PaymentMethods []PaymentSummary `json:"paymentMethods"`
	Employees      []EmployeeDaily  `json:"employees"`
}

// ReportService aggregates orders for the admin. Hidden orders are counted:
// hiding only affects the live dashboards.
type ReportService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Now: time.Now}
}

func (s *ReportService) employees(ctx context.Context) ([]models.User, error) {
	var employees []models.User
	if err := s.DB.WithContext(ctx).Where("is_employee = ?", true).Find(&employees).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return employees, nil
}

// Performance summarises each employee's handled orders that left the
// kitchen (ready, completed or cancelled).
func (s *ReportService) Performance(ctx context.Context) ([]EmployeePerformance, error) {
	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("assigned_to IS NOT NULL AND status NOT IN ?",
			[]models.OrderStatus{models.StatusPending, models.StatusPreparing}).
		Find(&orders).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}

	byEmployee := make(map[string][]models.Order)
	for _, o := range orders {
		byEmployee[*o.AssignedTo] = append(byEmployee[*o.AssignedTo], o)
	}

	out := make([]EmployeePerformance, 0, len(employees))
	for _, e := range employees {
		p := EmployeePerformance{UserID: e.ID, Username: e.Username}
		for _, o := range byEmployee[e.ID] {
			switch o.Status {
			case models.StatusCompleted:
				p.CompletedOrders++
				p.TotalOrders++
				p.TotalRevenue += o.Total
			case models.StatusCancelled:
				p.CancelledOrders++
			default:
				p.TotalOrders++
			}
		}
		p.TotalRevenue = utils.RoundMoney(p.TotalRevenue)
		if p.CompletedOrders > 0 {
			p.AverageOrderValue = utils.RoundMoney(p.TotalRevenue / float64(p.CompletedOrders))
		}
		out = append(out, p)
	}
	sortByUsername(out, func(p EmployeePerformance) string { return p.Username })
	return out, nil
}

// EmployeeOrders lists an employee's completed or cancelled orders.
func (s *ReportService) EmployeeOrders(ctx context.Context, employeeID string, status models.OrderStatus) ([]models.Order, error) {
	if status != models.StatusCompleted && status != models.StatusCancelled {
		return nil, utils.ErrInvalidPayload
	}
	orders := make([]models.Order, 0)
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Where("assigned_to = ? AND status = ?", employeeID, status).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return orders, nil
}

// Daily builds the report for the local calendar day containing day.
func (s *ReportService) Daily(ctx context.Context, day time.Time) (*DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}

	report := &DailyReport{
		Date:           start.Format("2006-01-02"),
		TotalOrders:    len(orders),
		TopItems:       make([]ItemSales, 0),
		PaymentMethods: make([]PaymentSummary, 0),
		Employees:      make([]EmployeeDaily, 0),
	}

	itemIndex := make(map[string]int)
	payIndex := make(map[string]int)
	for _, o := range orders {
		report.TotalRevenue += o.Total

		for _, it := range o.OrderItems {
			name := unknownItemName
			if it.MenuItem != nil && it.MenuItem.Name != "" {
				name = it.MenuItem.Name
			}
			idx, ok := itemIndex[name]
			if !ok {
				idx = len(report.TopItems)
				itemIndex[name] = idx
				report.TopItems = append(report.TopItems, ItemSales{Name: name})
			}
			report.TopItems[idx].Quantity += it.Quantity
		}

		method := paymentNotInformed
		if o.PaymentMethod != nil && *o.PaymentMethod != "" {
			method = *o.PaymentMethod
		}
		idx, ok := payIndex[method]
		if !ok {
			idx = len(report.PaymentMethods)
			payIndex[method] = idx
			report.PaymentMethods = append(report.PaymentMethods, PaymentSummary{Method: method, Label: PaymentMethodLabel(method)})
		}
		report.PaymentMethods[idx].Count++
		report.PaymentMethods[idx].Total = utils.RoundMoney(report.PaymentMethods[idx].Total + o.Total)
	}
	report.TotalRevenue = utils.RoundMoney(report.TotalRevenue)

	sort.SliceStable(report.TopItems, func(i, j int) bool {
		return report.TopItems[i].Quantity > report.TopItems[j].Quantity
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	employees, err := s.employees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		d := EmployeeDaily{UserID: e.ID, Username: e.Username}
		for _, o := range orders {
			if o.AssignedTo == nil || *o.AssignedTo != e.ID {
				continue
			}
			switch o.Status {
			case models.StatusCompleted:
				d.CompletedOrders++
				d.TotalRevenue += o.Total
			case models.StatusCancelled:
				d.CancelledOrders++
			}
		}
		d.TotalRevenue = utils.RoundMoney(d.TotalRevenue)
		report.Employees = append(report.Employees, d)
	}
	sortByUsername(report.Employees, func(d EmployeeDaily) string { return d.Username })

	return report, nil
}

// Today is Daily for the service clock.
func (s *ReportService) Today(ctx context.Context) (*DailyReport, error) {
	return s.Daily(ctx, s.Now())
}

func PaymentMethodLabel(method string) string {
	switch method {
	case "pix":
		return "PIX"
	case "dinheiro":
		return "Dinheiro"
	case "cartao_credito":
		return "Cartão de Crédito"
	case "cartao_debito":
		return "Cartão de Débito"
	default:
		return method
	}
}
