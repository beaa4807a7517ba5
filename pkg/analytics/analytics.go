// Package analytics builds the admin dashboard's sales aggregates.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTopN = 10

type StatusTotal struct {
	Status  string  `json:"estado"`
	Orders  int     `json:"pedidos"`
	Revenue float64 `json:"monto"`
}

type MonthTotal struct {
	Month   string  `json:"mes"`
	Orders  int     `json:"pedidos"`
	Revenue float64 `json:"monto"`
}

type ProductUnits struct {
	ProductID int     `json:"id_producto"`
	Name      string  `json:"nombre"`
	Units     int     `json:"unidades"`
	Revenue   float64 `json:"monto"`
}

type Summary struct {
	Orders      int            `json:"pedidos"`
	Revenue     float64        `json:"monto_total"`
	ByStatus    []StatusTotal  `json:"por_estado"`
	ByMonth     []MonthTotal   `json:"por_mes"`
	TopProducts []ProductUnits `json:"top_productos"`
	Source      string         `json:"fuente"`
}

// Ledger is a pre-aggregated sales store.
type Ledger interface {
	Summary(ctx context.Context, topN int) (*Summary, error)
}

type OrderLister interface {
	ListOrders(ctx context.Context) ([]*models.Order, error)
}

// Service answers dashboard queries from the ledger when one is configured
// and falls back to scanning every order otherwise.
type Service struct {
	ledger Ledger
	orders OrderLister
	logger *zap.Logger
}

func NewService(ledger Ledger, orders OrderLister, logger *zap.Logger) *Service {
	return &Service{ledger: ledger, orders: orders, logger: logger}
}

func (s *Service) Summary(ctx context.Context, topN int) (*Summary, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if s.ledger != nil {
		sum, err := s.ledger.Summary(ctx, topN)
		if err == nil {
			return sum, nil
		}
		s.logger.Warn("Ledger summary failed, scanning orders", zap.Error(err))
	}

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return Summarize(orders, topN), nil
}

// Summarize aggregates orders in memory. Months are formatted YYYY-MM in UTC.
func Summarize(orders []*models.Order, topN int) *Summary {
	total := decimal.Zero
	statuses := map[string]*statusAcc{}
	months := map[string]*statusAcc{}
	products := map[int]*productAcc{}

	for _, o := range orders {
		amount := decimal.NewFromFloat(o.Total)
		total = total.Add(amount)

		st := statuses[o.Status]
		if st == nil {
			st = &statusAcc{}
			statuses[o.Status] = st
		}
		st.orders++
		st.revenue = st.revenue.Add(amount)

		month := monthOf(o.PlacedAt)
		mt := months[month]
		if mt == nil {
			mt = &statusAcc{}
			months[month] = mt
		}
		mt.orders++
		mt.revenue = mt.revenue.Add(amount)

		for _, l := range o.Lines {
			p := products[l.ProductID]
			if p == nil {
				p = &productAcc{name: l.Name}
				products[l.ProductID] = p
			}
			p.units += l.Quantity
			p.revenue = p.revenue.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}

	sum := &Summary{
		Orders:      len(orders),
		Revenue:     total.Round(2).InexactFloat64(),
		ByStatus:    []StatusTotal{},
		ByMonth:     []MonthTotal{},
		TopProducts: []ProductUnits{},
		Source:      "orders",
	}
	for status, acc := range statuses {
		sum.ByStatus = append(sum.ByStatus, StatusTotal{Status: status, Orders: acc.orders, Revenue: acc.revenue.Round(2).InexactFloat64()})
	}
	sort.Slice(sum.ByStatus, func(i, j int) bool { return sum.ByStatus[i].Status < sum.ByStatus[j].Status })

	for month, acc := range months {
		sum.ByMonth = append(sum.ByMonth, MonthTotal{Month: month, Orders: acc.orders, Revenue: acc.revenue.Round(2).InexactFloat64()})
	}
	sort.Slice(sum.ByMonth, func(i, j int) bool { return sum.ByMonth[i].Month < sum.ByMonth[j].Month })

	for id, acc := range products {
		sum.TopProducts = append(sum.TopProducts, ProductUnits{ProductID: id, Name: acc.name, Units: acc.units, Revenue: acc.revenue.Round(2).InexactFloat64()})
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		a, b := sum.TopProducts[i], sum.TopProducts[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.ProductID < b.ProductID
	})
	if topN > 0 && len(sum.TopProducts) > topN {
		sum.TopProducts = sum.TopProducts[:topN]
	}
	return sum
}

type statusAcc struct {
	orders  int
	revenue decimal.Decimal
}

type productAcc struct {
	name    string
	units   int
	revenue decimal.Decimal
}

// SaleLines flattens an order into ledger rows.
func SaleLines(order *models.Order) []models.SaleLine {
	lines := make([]models.SaleLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		amount := decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
		lines = append(lines, models.SaleLine{
			OrderID:     order.ID,
			UID:         order.UID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price,
			Amount:      amount.Round(2).InexactFloat64(),
			Status:      order.Status,
			PlacedAt:    order.PlacedAt,
		})
	}
	return lines
}

// Round rounds a money amount to cents.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func monthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
