package service

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InventoryService exposes the read side of the inventory ledger. The
// remaining quantity is the sole authority for how much can be reserved;
// quantity changes happen on the reviewer side and are observed here by
// re-fetching.
type InventoryService struct {
	store port.Store
	cache port.CacheRepository
	log   Logger
}

// NewInventoryService builds the service. cache may be nil, in which case
// every List goes straight to the store.
func NewInventoryService(store port.Store, cache port.CacheRepository, log Logger) *InventoryService {
	return &InventoryService{
		store: store,
		cache: cache,
		log:   ensureLogger(log),
	}
}

// List returns every inventory item in stable id order, status derived
// from the remaining quantity. Snapshot cache failures are logged once
// and fall through to the store.
func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	if s.cache != nil {
		payload, err := s.cache.ReadInventorySnapshot(ctx)
		if err != nil {
			s.log.Warn("inventory snapshot read failed", "error", err)
		} else if payload != nil {
			var items []domain.InventoryItem
			if err := json.Unmarshal(payload, &items); err != nil {
				s.log.Warn("inventory snapshot decode failed", "error", err)
			} else {
				return items, nil
			}
		}
	}

	items, err := s.listFromStore(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.WriteInventorySnapshot(ctx, payload); err != nil {
				s.log.Warn("inventory snapshot write failed", "error", err)
			}
		}
	}

	return items, nil
}

// Get returns a single item by id, bypassing the snapshot cache so
// reservation checks always see current stock.
func (s *InventoryService) Get(ctx context.Context, id int64) (domain.InventoryItem, error) {
	rows, err := s.store.Query(ctx, inventoryTable, port.Filter{port.Eq("id", id)})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if len(rows) == 0 {
		return domain.InventoryItem{}, &domain.NotFoundError{Entity: "inventory item", Key: id}
	}
	item := inventoryFromRow(rows[0])
	item.Status = item.EffectiveStatus()
	return item, nil
}

func (s *InventoryService) listFromStore(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.store.Query(ctx, inventoryTable, nil, port.Order{Column: "id"})
	if err != nil {
		return nil, err
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for _, r := range rows {
		item := inventoryFromRow(r)
		item.Status = item.EffectiveStatus()
		items = append(items, item)
	}
	return items, nil
}
