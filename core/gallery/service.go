package gallery

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
)

var (
	ErrNotFound = errors.New("gallery item not found")
	ErrNoFiles  = errors.New("no files provided")
	// ErrTooManyFiles is returned when a single upload exceeds the pool
	// capacity; such a batch would evict part of itself.
	ErrTooManyFiles = errors.New("too many files for pool")
)

type Repository interface {
	CreateItem(ctx context.Context, it Item) (Item, error)
	GetItemByID(ctx context.Context, id string) (Item, error)
	GetItemsByID(ctx context.Context, ids ...string) ([]Item, error)
	// QueryPool returns all items in one pool, oldest first.
	QueryPool(ctx context.Context, event bool) ([]Item, error)
	// FilterItems returns a page of items, newest first.
	FilterItems(ctx context.Context, mf ManageFilter) ([]Item, int, error)
	UpdateItem(ctx context.Context, it Item) error
	DeleteItemsByID(ctx context.Context, ids ...string) (int, error)
}

// Directory resolves account IDs for poster population.
type Directory interface {
	GetByIDs(ctx context.Context, ids ...string) ([]account.Account, error)
}

type Service interface {
	// Upload stores a batch into a pool, evicting the oldest items when
	// the pool would overflow. Returns the stored items.
	Upload(ctx context.Context, postedBy string, event bool, uploads []Upload) ([]Item, error)
	QueryAll(ctx context.Context) (QueryAllResult, error)
	Manage(ctx context.Context, mf ManageFilter) ([]Info, int, error)
	GetByID(ctx context.Context, id string) (Item, error)
	Edit(ctx context.Context, id, title string, replacement *core.MediaFile) (Item, error)
	Delete(ctx context.Context, ids ...string) (int, error)
}

type service struct {
	repo     Repository
	dir      Directory
	mediaSvc core.MediaService
	logger   core.Logger
}

var _ Service = (*service)(nil)

func NewService(repo Repository, dir Directory, mediaSvc core.MediaService, logger core.Logger) *service {
	return &service{
		repo:     repo,
		dir:      dir,
		mediaSvc: mediaSvc,
		logger:   logger,
	}
}

func (s *service) Upload(ctx context.Context, postedBy string, event bool, uploads []Upload) ([]Item, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	capacity := PoolCap(event)
	if len(uploads) > capacity {
		return nil, ErrTooManyFiles
	}

	existing, err := s.repo.QueryPool(ctx, event)
	if err != nil {
		return nil, errors.Wrap(err, "querying pool")
	}
	if overflow := len(existing) + len(uploads) - capacity; overflow > 0 {
		if err = s.evict(ctx, existing[:overflow]); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	items := make([]Item, 0, len(uploads))
	for _, up := range uploads {
		stored, err := s.mediaSvc.Upload(ctx, up.File)
		if err != nil {
			return items, errors.Wrap(err, "uploading gallery media")
		}
		it := Item{
			URL:       stored.URL,
			StorageID: stored.StorageID,
			Title:     core.CleanString(up.Title),
			MediaType: stored.MediaType,
			Event:     event,
			PostedBy:  postedBy,
			CreatedAt: now,
		}
		if it, err = s.repo.CreateItem(ctx, it); err != nil {
			if derr := s.mediaSvc.Delete(ctx, stored.StorageID); derr != nil {
				s.logger.Warn("deleting orphaned gallery media", "error", derr)
			}
			return items, errors.Wrap(err, "creating gallery item")
		}
		items = append(items, it)
	}
	return items, nil
}

// evict removes items from both external storage and the store.
func (s *service) evict(ctx context.Context, items []Item) error {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if err := s.mediaSvc.Delete(ctx, it.StorageID); err != nil {
			return errors.Wrapf(err, "evicting gallery media %s", it.ID)
		}
		ids = append(ids, it.ID)
	}
	if _, err := s.repo.DeleteItemsByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "evicting gallery items")
	}
	return nil
}

func (s *service) QueryAll(ctx context.Context) (QueryAllResult, error) {
	res := QueryAllResult{Events: []Item{}, Gallery: []Item{}}
	events, err := s.repo.QueryPool(ctx, true /* event */)
	if err != nil {
		return res, err
	}
	regular, err := s.repo.QueryPool(ctx, false /* event */)
	if err != nil {
		return res, err
	}
	// newest first for display
	for i := len(events) - 1; i >= 0; i-- {
		res.Events = append(res.Events, events[i])
	}
	for i := len(regular) - 1; i >= 0; i-- {
		res.Gallery = append(res.Gallery, regular[i])
	}
	return res, nil
}

func (s *service) Manage(ctx context.Context, mf ManageFilter) ([]Info, int, error) {
	mf.Clean()
	items, total, err := s.repo.FilterItems(ctx, mf)
	if err != nil {
		return nil, 0, err
	}

	posterIDs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.PostedBy] {
			seen[it.PostedBy] = true
			posterIDs = append(posterIDs, it.PostedBy)
		}
	}
	dir := make(map[string]account.Account, len(posterIDs))
	if len(posterIDs) > 0 {
		accounts, err := s.dir.GetByIDs(ctx, posterIDs...)
		if err != nil {
			return nil, 0, errors.Wrap(err, "resolving posters")
		}
		for _, acct := range accounts {
			dir[acct.ID] = acct
		}
	}
	return populate(items, dir), total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (Item, error) {
	return s.repo.GetItemByID(ctx, id)
}

func (s *service) Edit(ctx context.Context, id, title string, replacement *core.MediaFile) (Item, error) {
	it, err := s.repo.GetItemByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if replacement != nil {
		stored, err := s.mediaSvc.Upload(ctx, *replacement)
		if err != nil {
			return Item{}, errors.Wrap(err, "uploading replacement media")
		}
		if err = s.mediaSvc.Delete(ctx, it.StorageID); err != nil {
			s.logger.Warn("deleting replaced gallery media", "id", it.ID, "error", err)
		}
		it.URL = stored.URL
		it.StorageID = stored.StorageID
		it.MediaType = stored.MediaType
	}
	if title != "" {
		it.Title = core.CleanString(title)
	}
	if err = s.repo.UpdateItem(ctx, it); err != nil {
		return Item{}, errors.Wrap(err, "updating gallery item")
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, ids ...string) (int, error) {
	items, err := s.repo.GetItemsByID(ctx, ids...)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, ErrNotFound
	}
	return len(items), s.evict(ctx, items)
}
