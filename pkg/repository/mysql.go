package repository

import (
	"context"
	"fmt"

	"github.com/example/tienda/pkg/analytics"
	"github.com/example/tienda/pkg/config"
	"github.com/example/tienda/pkg/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// SalesLedger mirrors placed orders into MySQL, one row per order line,
// so the admin dashboard can aggregate with SQL.
type SalesLedger struct {
	db *gorm.DB
}

func NewSalesLedger(cfg *config.MySQLConfig) (*SalesLedger, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Auto migrate
	if err := db.AutoMigrate(&models.SaleLine{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &SalesLedger{db: db}, nil
}

func (l *SalesLedger) RecordOrder(ctx context.Context, order *models.Order) error {
	lines := analytics.SaleLines(order)
	if len(lines) == 0 {
		return nil
	}
	if err := l.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to record order %d: %w", order.ID, err)
	}
	return nil
}

func (l *SalesLedger) UpdateStatus(ctx context.Context, orderID int, status string) error {
	err := l.db.WithContext(ctx).Model(&models.SaleLine{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update ledger status for order %d: %w", orderID, err)
	}
	return nil
}

func (l *SalesLedger) Summary(ctx context.Context, topN int) (*analytics.Summary, error) {
	db := l.db.WithContext(ctx).Model(&models.SaleLine{})

	var totals struct {
		Orders  int
		Revenue float64
	}
	if err := db.Select("COUNT(DISTINCT order_id) AS orders, COALESCE(SUM(amount), 0) AS revenue").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to total sales: %w", err)
	}

	var byStatus []analytics.StatusTotal
	if err := l.db.WithContext(ctx).Model(&models.SaleLine{}).
		Select("status, COUNT(DISTINCT order_id) AS orders, SUM(amount) AS revenue").
		Group("status").
		Order("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group sales by status: %w", err)
	}

	var byMonth []analytics.MonthTotal
	if err := l.db.WithContext(ctx).Model(&models.SaleLine{}).
		Select("DATE_FORMAT(placed_at, '%Y-%m') AS month, COUNT(DISTINCT order_id) AS orders, SUM(amount) AS revenue").
		Group("month").
		Order("month").
		Scan(&byMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to group sales by month: %w", err)
	}

	var top []analytics.ProductUnits
	if err := l.db.WithContext(ctx).Model(&models.SaleLine{}).
		Select("product_id, product_name AS name, SUM(quantity) AS units, SUM(amount) AS revenue").
		Group("product_id, product_name").
		Order("units DESC").
		Limit(topN).
		Scan(&top).Error; err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	return &analytics.Summary{
		Orders:      totals.Orders,
		Revenue:     analytics.Round(totals.Revenue),
		ByStatus:    byStatus,
		ByMonth:     byMonth,
		TopProducts: top,
		Source:      "ledger",
	}, nil
}

func (l *SalesLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
