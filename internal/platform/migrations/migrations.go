package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the orders and auctions contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&artworkRecord{},
		&bidRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID                   string          `gorm:"primaryKey;column:id;size:64"`
	UserID               string          `gorm:"column:user_id;size:128;index:idx_orders_user_created"`
	Items                []byte          `gorm:"column:items;type:jsonb"`
	ArtworkIDs           pq.StringArray  `gorm:"column:artwork_ids;type:text[];index:idx_orders_artwork_ids,type:gin"`
	Subtotal             decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2)"`
	Tax                  decimal.Decimal `gorm:"column:tax;type:numeric(14,2)"`
	Shipping             decimal.Decimal `gorm:"column:shipping;type:numeric(14,2)"`
	Discount             decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	Total                decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	Currency             string          `gorm:"column:currency;size:3"`
	Status               string          `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus        string          `gorm:"column:payment_status;type:varchar(32)"`
	PaymentMethod        string          `gorm:"column:payment_method;type:varchar(32)"`
	ShippingAddress      []byte          `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress       []byte          `gorm:"column:billing_address;type:jsonb"`
	TrackingNumber       *string         `gorm:"column:tracking_number"`
	EstimatedDelivery    *time.Time      `gorm:"column:estimated_delivery"`
	ActualDelivery       *time.Time      `gorm:"column:actual_delivery"`
	CancellationReason   *string         `gorm:"column:cancellation_reason;type:varchar(32)"`
	CancellationComments *string         `gorm:"column:cancellation_comments"`
	Notes                *string         `gorm:"column:notes"`
	Version              int64           `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time       `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Artwork schema mirrors the auctions Postgres adapter.
type artworkRecord struct {
	ID             string           `gorm:"primaryKey;column:id;size:64"`
	Title          string           `gorm:"column:title"`
	ArtistID       string           `gorm:"column:artist_id;index"`
	Description    string           `gorm:"column:description"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(14,2)"`
	BiddingEnabled bool             `gorm:"column:bidding_enabled;index"`
	StartPrice     *decimal.Decimal `gorm:"column:start_price;type:numeric(14,2)"`
	CurrentBid     *decimal.Decimal `gorm:"column:current_bid;type:numeric(14,2)"`
	AuctionEndDate *time.Time       `gorm:"column:auction_end_date"`
	WinningBidID   string           `gorm:"column:winning_bid_id;size:64"`
	Version        int64            `gorm:"column:version;not null;default:1"`
	CreatedAt      time.Time        `gorm:"column:created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at"`
}

func (artworkRecord) TableName() string { return "artworks" }

// Bid schema mirrors the append-only bid history of the auctions adapter.
type bidRecord struct {
	ID           string          `gorm:"primaryKey;column:id;size:64"`
	ArtworkID    string          `gorm:"column:artwork_id;size:64;index:idx_artwork_bids_artwork_placed"`
	UserID       string          `gorm:"column:user_id;size:128"`
	UserName     string          `gorm:"column:user_name"`
	UserAvatarID string          `gorm:"column:user_avatar_id"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(14,2)"`
	PlacedAt     time.Time       `gorm:"column:placed_at;index:idx_artwork_bids_artwork_placed"`
}

func (bidRecord) TableName() string { return "artwork_bids" }
