package cache

import (
	"time"

	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"github.com/jellydator/ttlcache/v3"
	"gorm.io/gorm"
)

// OrderEarliest selects ascending creation order. Anything else, including
// typos, falls back to the newest-first default.
const OrderEarliest = "earliest"

const (
	keyLatest   = "latest"
	keyEarliest = "earliest"
)

// SeminarList is a read-through cache over the seminar listing with two
// named entries, one per sort order. Each entry carries its own freshness
// window; neither is invalidated on writes, so results may lag by at most
// the entry's TTL.
type SeminarList struct {
	db          *gorm.DB
	entries     *ttlcache.Cache[string, []models.Seminar]
	latestTTL   time.Duration
	earliestTTL time.Duration
}

func NewSeminarList(db *gorm.DB, latestTTL, earliestTTL time.Duration) *SeminarList {
	entries := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []models.Seminar](),
	)
	go entries.Start()

	return &SeminarList{
		db:          db,
		entries:     entries,
		latestTTL:   latestTTL,
		earliestTTL: earliestTTL,
	}
}

// List returns all seminars in the requested order, served from the cache
// entry for that order when it is still fresh.
func (c *SeminarList) List(order string) ([]models.Seminar, error) {
	key, ttl, sort := keyLatest, c.latestTTL, "created_at DESC"
	if order == OrderEarliest {
		key, ttl, sort = keyEarliest, c.earliestTTL, "created_at ASC"
	}

	if item := c.entries.Get(key); item != nil {
		return item.Value(), nil
	}

	var seminars []models.Seminar
	if err := c.db.Order(sort).Find(&seminars).Error; err != nil {
		return nil, err
	}
	c.entries.Set(key, seminars, ttl)
	return seminars, nil
}
