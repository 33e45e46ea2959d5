package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskerway/dawat-storefront/pkg/pagination"
)

// BackupRecord is the append-only local archive row for a finalized order.
// It is the last line of defense for manual reconciliation when the remote
// sinks fail after a successful charge.
type BackupRecord struct {
	ID                  uint            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	OrderID             string          `gorm:"column:order_id;uniqueIndex;not null" json:"orderId"`
	CustomerName        string          `gorm:"column:customer_name;not null" json:"customerName"`
	Email               string          `gorm:"column:email;not null" json:"email"`
	Phone               string          `gorm:"column:phone" json:"phone"`
	Address             string          `gorm:"column:address" json:"address"`
	Items               []Item          `gorm:"column:items;serializer:json" json:"items"`
	Subtotal            decimal.Decimal `gorm:"column:subtotal;type:numeric" json:"subtotal"`
	DeliveryFee         decimal.Decimal `gorm:"column:delivery_fee;type:numeric" json:"deliveryFee"`
	Total               decimal.Decimal `gorm:"column:total;type:numeric" json:"total"`
	SpecialInstructions string          `gorm:"column:special_instructions" json:"specialInstructions,omitempty"`
	PaymentStatus       string          `gorm:"column:payment_status;not null" json:"paymentStatus"`
	PaymentIntentID     string          `gorm:"column:payment_intent_id" json:"paymentIntentId,omitempty"`
	SavedAt             time.Time       `gorm:"column:saved_at;autoCreateTime" json:"savedAt"`
}

// TableName pins the archive table name.
func (BackupRecord) TableName() string { return "order_backups" }

// BackupPage is one page of the archive plus the cursor for the next one.
type BackupPage struct {
	Records    []BackupRecord `json:"records"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// Repository is the durable local backup store.
type Repository interface {
	Append(ctx context.Context, order *Order) error
	List(ctx context.Context, params pagination.Params) (*BackupPage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository wires the backup repository on the shared connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AutoMigrate creates the archive table when absent.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BackupRecord{})
}

// Append inserts the finalized order. Records are never updated or deleted.
func (r *repository) Append(ctx context.Context, order *Order) error {
	record := BackupRecord{
		OrderID:             order.OrderID,
		CustomerName:        order.CustomerName,
		Email:               order.Email,
		Phone:               order.Phone,
		Address:             order.Address,
		Items:               order.Items,
		Subtotal:            order.Subtotal,
		DeliveryFee:         order.DeliveryFee,
		Total:               order.Total,
		SpecialInstructions: order.SpecialInstructions,
		PaymentStatus:       string(order.PaymentStatus),
		PaymentIntentID:     order.PaymentIntentID,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// List returns one archive page, most recent first. The cursor orders on
// (saved_at, order_id) so rows saved in the same second do not repeat or
// vanish between pages.
func (r *repository) List(ctx context.Context, params pagination.Params) (*BackupPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Order("saved_at DESC").
		Order("order_id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"saved_at < ? OR (saved_at = ? AND order_id < ?)",
			cursor.SavedAt, cursor.SavedAt, cursor.OrderID,
		)
	}

	var records []BackupRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	page := &BackupPage{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		last := page.Records[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			SavedAt: last.SavedAt,
			OrderID: last.OrderID,
		})
	}
	return page, nil
}
