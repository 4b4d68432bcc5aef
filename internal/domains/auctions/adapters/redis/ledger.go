package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

// reserveScript compares and sets the highest bid in one server-side step.
// KEYS[1] current bid, KEYS[2] winning bid id. ARGV[1] amount, ARGV[2] bid id, ARGV[3] floor.
// Amounts are stored as decimal strings and returned unchanged.
var reserveScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	current = ARGV[3]
end
if tonumber(ARGV[1]) > tonumber(current) and tonumber(ARGV[1]) > tonumber(ARGV[3]) then
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
	return {1, current}
end
return {0, current}
`)

// releaseScript rolls a reservation back if the bid still holds the ledger.
// KEYS[1] current bid, KEYS[2] winning bid id. ARGV[1] bid id, ARGV[2] previous amount, ARGV[3] previous winner.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[2]) ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2])
if ARGV[3] == '' then
	redis.call('DEL', KEYS[2])
else
	redis.call('SET', KEYS[2], ARGV[3])
end
return 1
`)

// Ledger keeps the highest accepted bid per artwork in Redis.
type Ledger struct {
	client redis.Scripter
	getter redis.Cmdable
}

var _ ports.BidLedger = (*Ledger)(nil)

func NewLedger(client redis.UniversalClient) *Ledger {
	return &Ledger{client: client, getter: client}
}

func currentBidKey(artworkID string) string    { return fmt.Sprintf("artwork:%s:current_bid", artworkID) }
func winningBidderKey(artworkID string) string { return fmt.Sprintf("artwork:%s:winning_bid", artworkID) }

// Reserve accepts amount when it beats both floor and the ledger value.
// On rejection the returned decimal is the value the bid lost against.
func (l *Ledger) Reserve(ctx context.Context, artworkID, bidID string, amount, floor decimal.Decimal) (bool, decimal.Decimal, error) {
	keys := []string{currentBidKey(artworkID), winningBidderKey(artworkID)}
	res, err := reserveScript.Run(ctx, l.client, keys, amount.String(), bidID, floor.String()).Slice()
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("run reserve script: %w", err)
	}
	if len(res) != 2 {
		return false, decimal.Zero, fmt.Errorf("unexpected reserve result %v", res)
	}
	flag, ok := res[0].(int64)
	if !ok {
		return false, decimal.Zero, fmt.Errorf("unexpected reserve flag %T", res[0])
	}
	raw, ok := res[1].(string)
	if !ok {
		return false, decimal.Zero, fmt.Errorf("unexpected reserve value %T", res[1])
	}
	current, err := decimal.NewFromString(raw)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("parse ledger value: %w", err)
	}
	if flag == 1 {
		return true, current, nil
	}
	if floor.GreaterThan(current) {
		current = floor
	}
	return false, current, nil
}

// Release restores previous and previousWinner when bidID is still the ledger winner.
// It reports false when a later bid has already replaced the reservation.
func (l *Ledger) Release(ctx context.Context, artworkID, bidID string, previous decimal.Decimal, previousWinner string) (bool, error) {
	keys := []string{currentBidKey(artworkID), winningBidderKey(artworkID)}
	released, err := releaseScript.Run(ctx, l.client, keys, bidID, previous.String(), previousWinner).Int()
	if err != nil {
		return false, fmt.Errorf("run release script: %w", err)
	}
	return released == 1, nil
}

// Current returns the ledger's highest bid and winning bid id.
func (l *Ledger) Current(ctx context.Context, artworkID string) (decimal.Decimal, string, error) {
	pipe := l.getter.Pipeline()
	bidCmd := pipe.Get(ctx, currentBidKey(artworkID))
	winnerCmd := pipe.Get(ctx, winningBidderKey(artworkID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return decimal.Zero, "", fmt.Errorf("read ledger: %w", err)
	}
	amount := decimal.Zero
	if bidCmd.Err() == nil {
		parsed, err := decimal.NewFromString(bidCmd.Val())
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("parse ledger value: %w", err)
		}
		amount = parsed
	}
	var winner string
	if winnerCmd.Err() == nil {
		winner = winnerCmd.Val()
	}
	return amount, winner, nil
}
