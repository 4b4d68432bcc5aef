package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

var _ ports.ArtworkStore = (*Store)(nil)

// Store persists artworks and their append-only bid history in PostgreSQL.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

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
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (artworkRecord) TableName() string { return "artworks" }

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

func (s *Store) Create(ctx context.Context, artwork *domain.Artwork) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if artwork == nil {
		return errors.New("artwork is nil")
	}
	rec := toRecord(artwork)
	if rec.Version == 0 {
		rec.Version = 1
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return insertBids(tx, artwork.Bids)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrAlreadyExists
		}
		return err
	}
	artwork.Version = rec.Version
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Artwork, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return load(s.db.WithContext(ctx), id, false)
}

// List returns artworks oldest first, each with its bid history.
func (s *Store) List(ctx context.Context) ([]*domain.Artwork, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var records []artworkRecord
	if err := db.Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Artwork{}, nil
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	var bids []bidRecord
	if err := db.Where("artwork_id IN ?", ids).Order("placed_at DESC").Order("amount DESC").Find(&bids).Error; err != nil {
		return nil, err
	}
	byArtwork := make(map[string][]bidRecord, len(records))
	for _, b := range bids {
		byArtwork[b.ArtworkID] = append(byArtwork[b.ArtworkID], b)
	}
	artworks := make([]*domain.Artwork, 0, len(records))
	for _, r := range records {
		artworks = append(artworks, r.toDomain(byArtwork[r.ID]))
	}
	return artworks, nil
}

// Update locks the artwork row so bids on one artwork are applied one at a time.
func (s *Store) Update(ctx context.Context, id string, mutate ports.MutateFunc) (*domain.Artwork, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Artwork
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, id, true)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(current.Bids))
		for _, b := range current.Bids {
			known[b.ID] = struct{}{}
		}
		working := current.Clone()
		if err := mutate(working); err != nil {
			return err
		}
		next := toRecord(working)
		next.Version = current.Version + 1
		result := tx.Model(&artworkRecord{}).
			Where("id = ? AND version = ?", id, current.Version).
			Select("*").Omit("id", "created_at").
			Updates(&next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrConcurrentUpdate
		}
		added := make([]domain.Bid, 0, 1)
		for _, b := range working.Bids {
			if _, ok := known[b.ID]; !ok {
				added = append(added, b)
			}
		}
		if err := insertBids(tx, added); err != nil {
			return err
		}
		working.Version = next.Version
		updated = working
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres artwork store not configured")
	}
	return nil
}

func load(db *gorm.DB, id string, lock bool) (*domain.Artwork, error) {
	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec artworkRecord
	if err := q.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var bids []bidRecord
	if err := db.Where("artwork_id = ?", id).Order("placed_at DESC").Order("amount DESC").Find(&bids).Error; err != nil {
		return nil, err
	}
	return rec.toDomain(bids), nil
}

func insertBids(tx *gorm.DB, bids []domain.Bid) error {
	if len(bids) == 0 {
		return nil
	}
	records := make([]bidRecord, 0, len(bids))
	for _, b := range bids {
		records = append(records, bidRecord{
			ID:           b.ID,
			ArtworkID:    b.ArtworkID,
			UserID:       b.UserID,
			UserName:     b.UserName,
			UserAvatarID: b.UserAvatarID,
			Amount:       b.Amount,
			PlacedAt:     b.Timestamp,
		})
	}
	return tx.Create(&records).Error
}

func toRecord(a *domain.Artwork) artworkRecord {
	return artworkRecord{
		ID:             a.ID,
		Title:          a.Title,
		ArtistID:       a.ArtistID,
		Description:    a.Description,
		Price:          a.Price,
		BiddingEnabled: a.BiddingEnabled,
		StartPrice:     a.StartPrice,
		CurrentBid:     a.CurrentBid,
		AuctionEndDate: a.AuctionEndDate,
		WinningBidID:   a.WinningBidID,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (r artworkRecord) toDomain(bids []bidRecord) *domain.Artwork {
	a := &domain.Artwork{
		ID:             r.ID,
		Title:          r.Title,
		ArtistID:       r.ArtistID,
		Description:    r.Description,
		Price:          r.Price,
		BiddingEnabled: r.BiddingEnabled,
		StartPrice:     r.StartPrice,
		CurrentBid:     r.CurrentBid,
		WinningBidID:   r.WinningBidID,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		Bids:           make([]domain.Bid, 0, len(bids)),
	}
	if r.AuctionEndDate != nil {
		end := r.AuctionEndDate.UTC()
		a.AuctionEndDate = &end
	}
	for _, b := range bids {
		a.Bids = append(a.Bids, domain.Bid{
			ID:           b.ID,
			ArtworkID:    b.ArtworkID,
			UserID:       b.UserID,
			UserName:     b.UserName,
			UserAvatarID: b.UserAvatarID,
			Amount:       b.Amount,
			Timestamp:    b.PlacedAt.UTC(),
		})
	}
	return a
}
