package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/notice"
)

type NoticeRepository struct {
	mu      sync.RWMutex
	notices map[string]notice.Notice
}

var _ notice.Repository = (*NoticeRepository)(nil)

func NewNoticeRepository() *NoticeRepository {
	return &NoticeRepository{notices: make(map[string]notice.Notice)}
}

func (repo *NoticeRepository) CreateNotice(_ context.Context, n notice.Notice) (notice.Notice, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	n.ID = uuid.New().String()
	repo.notices[n.ID] = n
	return n, nil
}

func (repo *NoticeRepository) GetNoticeByID(_ context.Context, id string) (notice.Notice, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	n, ok := repo.notices[id]
	if !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	return n, nil
}

func (repo *NoticeRepository) QueryAllNotices(_ context.Context, now time.Time) ([]notice.Notice, error) {
	repo.mu.RLock()
	notices := make([]notice.Notice, 0)
	for _, n := range repo.notices {
		if !n.Expired(now) {
			notices = append(notices, n)
		}
	}
	repo.mu.RUnlock()

	sort.Slice(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

func (repo *NoticeRepository) FindExpired(_ context.Context, now time.Time) ([]notice.Notice, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	expired := make([]notice.Notice, 0)
	for _, n := range repo.notices {
		if n.Expired(now) || n.ExpiresAt.Equal(now) {
			expired = append(expired, n)
		}
	}
	return expired, nil
}

func (repo *NoticeRepository) UpdateNotice(_ context.Context, n notice.Notice) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.notices[n.ID]; !ok {
		return notice.ErrNotFound
	}
	repo.notices[n.ID] = n
	return nil
}

func (repo *NoticeRepository) DeleteNoticesByID(_ context.Context, ids ...string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := repo.notices[id]; ok {
			delete(repo.notices, id)
			n++
		}
	}
	return n, nil
}
