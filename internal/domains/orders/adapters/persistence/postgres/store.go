package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

var _ ports.OrderStore = (*Store)(nil)

// Store persists orders in PostgreSQL using GORM. Schema is applied by platform/migrations.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed order store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID                   string          `gorm:"primaryKey;column:id;size:64"`
	UserID               string          `gorm:"column:user_id;size:128;index:idx_orders_user_created"`
	Items                []itemRecord    `gorm:"column:items;serializer:json"`
	ArtworkIDs           pq.StringArray  `gorm:"column:artwork_ids;type:text[]"`
	Subtotal             decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2)"`
	Tax                  decimal.Decimal `gorm:"column:tax;type:numeric(14,2)"`
	Shipping             decimal.Decimal `gorm:"column:shipping;type:numeric(14,2)"`
	Discount             decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	Total                decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	Currency             string          `gorm:"column:currency;size:3"`
	Status               string          `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus        string          `gorm:"column:payment_status;type:varchar(32)"`
	PaymentMethod        string          `gorm:"column:payment_method;type:varchar(32)"`
	ShippingAddress      addressRecord   `gorm:"column:shipping_address;serializer:json"`
	BillingAddress       addressRecord   `gorm:"column:billing_address;serializer:json"`
	TrackingNumber       *string         `gorm:"column:tracking_number"`
	EstimatedDelivery    *time.Time      `gorm:"column:estimated_delivery"`
	ActualDelivery       *time.Time      `gorm:"column:actual_delivery"`
	CancellationReason   *string         `gorm:"column:cancellation_reason;type:varchar(32)"`
	CancellationComments *string         `gorm:"column:cancellation_comments"`
	Notes                *string         `gorm:"column:notes"`
	Version              int64           `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime:false;index:idx_orders_user_created"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (orderRecord) TableName() string { return "orders" }

type itemRecord struct {
	ArtworkID string          `json:"artworkId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
	ArtistID  string          `json:"artistId"`
}

type addressRecord struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Create inserts a new order.
func (s *Store) Create(ctx context.Context, order *domain.Order) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	record := toRecord(order)
	if record.Version == 0 {
		record.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrAlreadyExists
		}
		return err
	}
	order.Version = record.Version
	return nil
}

// Get fetches an order by identifier.
func (s *Store) Get(ctx context.Context, id string) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser returns the user's orders, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Update locks the row, applies mutate and writes back guarded by the version column.
func (s *Store) Update(ctx context.Context, id string, mutate ports.MutateFunc) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := current.toDomain()
		if err := mutate(order); err != nil {
			return err
		}
		next := toRecord(order)
		next.Version = current.Version + 1
		result := tx.Model(&orderRecord{}).
			Where("id = ? AND version = ?", id, current.Version).
			Select("*").Omit("id", "created_at").
			Updates(&next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrConcurrentUpdate
		}
		order.Version = next.Version
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres order store not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(order.Items))
	artworkIDs := make(pq.StringArray, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemRecord{
			ArtworkID: item.ArtworkID,
			Quantity:  item.Quantity,
			Price:     item.PriceAtOrderTime,
			Title:     item.Title,
			ArtistID:  item.ArtistID,
		})
		artworkIDs = append(artworkIDs, item.ArtworkID)
	}
	rec := orderRecord{
		ID:                   order.ID,
		UserID:               order.UserID,
		Items:                items,
		ArtworkIDs:           artworkIDs,
		Subtotal:             order.Totals.Subtotal,
		Tax:                  order.Totals.Tax,
		Shipping:             order.Totals.Shipping,
		Discount:             order.Totals.Discount,
		Total:                order.Totals.Total,
		Currency:             order.Totals.Currency,
		Status:               string(order.Status),
		PaymentStatus:        string(order.PaymentStatus),
		PaymentMethod:        order.PaymentMethod,
		ShippingAddress:      addressToRecord(order.ShippingAddress),
		BillingAddress:       addressToRecord(order.BillingAddress),
		TrackingNumber:       order.TrackingNumber,
		EstimatedDelivery:    order.EstimatedDelivery,
		ActualDelivery:       order.ActualDelivery,
		CancellationComments: order.CancellationComments,
		Notes:                order.Notes,
		Version:              order.Version,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
	if order.CancellationReason != nil {
		reason := string(*order.CancellationReason)
		rec.CancellationReason = &reason
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.Item{
			ArtworkID:        item.ArtworkID,
			Quantity:         item.Quantity,
			PriceAtOrderTime: item.Price,
			Title:            item.Title,
			ArtistID:         item.ArtistID,
		})
	}
	order := &domain.Order{
		ID:     r.ID,
		UserID: r.UserID,
		Items:  items,
		Totals: domain.Totals{
			Subtotal: r.Subtotal,
			Tax:      r.Tax,
			Shipping: r.Shipping,
			Discount: r.Discount,
			Total:    r.Total,
			Currency: r.Currency,
		},
		Status:               domain.Status(r.Status),
		PaymentStatus:        domain.PaymentStatus(r.PaymentStatus),
		PaymentMethod:        r.PaymentMethod,
		ShippingAddress:      r.ShippingAddress.toDomain(),
		BillingAddress:       r.BillingAddress.toDomain(),
		TrackingNumber:       r.TrackingNumber,
		EstimatedDelivery:    utcPtr(r.EstimatedDelivery),
		ActualDelivery:       utcPtr(r.ActualDelivery),
		CancellationComments: r.CancellationComments,
		Notes:                r.Notes,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt.UTC(),
		UpdatedAt:            r.UpdatedAt.UTC(),
	}
	if r.CancellationReason != nil {
		reason := domain.CancellationReason(*r.CancellationReason)
		order.CancellationReason = &reason
	}
	return order
}

func addressToRecord(a domain.Address) addressRecord {
	return addressRecord{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func (a addressRecord) toDomain() domain.Address {
	return domain.Address{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
