package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/gallery"
)

type GalleryRepository struct {
	mu    sync.RWMutex
	items map[string]gallery.Item
}

var _ gallery.Repository = (*GalleryRepository)(nil)

func NewGalleryRepository() *GalleryRepository {
	return &GalleryRepository{items: make(map[string]gallery.Item)}
}

func (repo *GalleryRepository) CreateItem(_ context.Context, it gallery.Item) (gallery.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	it.ID = uuid.New().String()
	repo.items[it.ID] = it
	return it, nil
}

func (repo *GalleryRepository) GetItemByID(_ context.Context, id string) (gallery.Item, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	it, ok := repo.items[id]
	if !ok {
		return gallery.Item{}, gallery.ErrNotFound
	}
	return it, nil
}

func (repo *GalleryRepository) GetItemsByID(_ context.Context, ids ...string) ([]gallery.Item, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	items := make([]gallery.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := repo.items[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (repo *GalleryRepository) QueryPool(_ context.Context, event bool) ([]gallery.Item, error) {
	repo.mu.RLock()
	items := make([]gallery.Item, 0)
	for _, it := range repo.items {
		if it.Event == event {
			items = append(items, it)
		}
	}
	repo.mu.RUnlock()

	// oldest first; creation times can collide in tests, so the id breaks ties
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (repo *GalleryRepository) FilterItems(_ context.Context, mf gallery.ManageFilter) ([]gallery.Item, int, error) {
	repo.mu.RLock()
	matches := make([]gallery.Item, 0)
	for _, it := range repo.items {
		switch mf.Type {
		case gallery.TypeEvents:
			if !it.Event {
				continue
			}
		case gallery.TypeGallery:
			if it.Event {
				continue
			}
		}
		matches = append(matches, it)
	}
	repo.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	total := len(matches)
	lo, hi := pageBounds(total, mf.Offset(), mf.Limit)
	return matches[lo:hi], total, nil
}

func (repo *GalleryRepository) UpdateItem(_ context.Context, it gallery.Item) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.items[it.ID]; !ok {
		return gallery.ErrNotFound
	}
	repo.items[it.ID] = it
	return nil
}

func (repo *GalleryRepository) DeleteItemsByID(_ context.Context, ids ...string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := repo.items[id]; ok {
			delete(repo.items, id)
			n++
		}
	}
	return n, nil
}
