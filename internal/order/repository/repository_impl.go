package repository

import (
	"context"

	"github.com/smallbiznis/dinepos/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, order_type, table_id, payment_mode,
			subtotal, tax_amount, discount_amount, total_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderType,
		order.TableID,
		order.PaymentMode,
		order.Subtotal,
		order.TaxAmount,
		order.DiscountAmount,
		order.TotalAmount,
		order.CreatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []domain.OrderLine) error {
	for _, line := range lines {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO order_lines (
				id, order_id, menu_item_id, position, item_name, category,
				unit_price, tax_rate, quantity, line_total
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.OrderID,
			line.MenuItemID,
			line.Position,
			line.ItemName,
			line.Category,
			line.UnitPrice,
			line.TaxRate,
			line.Quantity,
			line.LineTotal,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_type, table_id, payment_mode,
			subtotal, tax_amount, discount_amount, total_amount, created_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]domain.OrderLine, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var lines []domain.OrderLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, menu_item_id, position, item_name, category,
			unit_price, tax_rate, quantity, line_total
		 FROM order_lines WHERE order_id IN ?
		 ORDER BY order_id ASC, position ASC`,
		orderIDs,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
