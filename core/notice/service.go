package notice

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
)

var (
	ErrNotFound = errors.New("notice not found")
)

type Repository interface {
	CreateNotice(ctx context.Context, n Notice) (Notice, error)
	GetNoticeByID(ctx context.Context, id string) (Notice, error)
	// QueryAllNotices returns unexpired notices, newest first.
	QueryAllNotices(ctx context.Context, now time.Time) ([]Notice, error)
	// FindExpired returns notices whose expiry passed at or before now.
	FindExpired(ctx context.Context, now time.Time) ([]Notice, error)
	UpdateNotice(ctx context.Context, n Notice) error
	DeleteNoticesByID(ctx context.Context, ids ...string) (int, error)
}

type Service interface {
	Publish(ctx context.Context, postedBy string, nn NewNotice, attachment *core.MediaFile) (Notice, error)
	GetByID(ctx context.Context, id string) (Notice, error)
	QueryAll(ctx context.Context) ([]Notice, error)
	Edit(ctx context.Context, id string, un UpdateNotice) (Notice, error)
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes expired notices and their attachments. It is
	// meant to run on a schedule; the store's TTL index may race it on
	// metadata, so attachment cleanup never assumes the document exists.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo     Repository
	mediaSvc core.MediaService
	logger   core.Logger
}

var _ Service = (*service)(nil)

func NewService(repo Repository, mediaSvc core.MediaService, logger core.Logger) *service {
	return &service{
		repo:     repo,
		mediaSvc: mediaSvc,
		logger:   logger,
	}
}

func (s *service) Publish(ctx context.Context, postedBy string, nn NewNotice, attachment *core.MediaFile) (Notice, error) {
	now := time.Now().UTC()
	expiry := now.Add(DefaultTTL)
	if nn.ExpiresAt != nil {
		expiry = nn.ExpiresAt.UTC()
	}
	n := Notice{
		Title:       nn.Title,
		Description: nn.Description,
		PostedBy:    postedBy,
		ExpiresAt:   expiry,
		CreatedAt:   now,
	}
	if attachment != nil {
		stored, err := s.mediaSvc.Upload(ctx, *attachment)
		if err != nil {
			return Notice{}, errors.Wrap(err, "uploading notice attachment")
		}
		n.Media = &Media{
			URL:       stored.URL,
			StorageID: stored.StorageID,
			Type:      stored.MediaType,
		}
	}

	created, err := s.repo.CreateNotice(ctx, n)
	if err != nil {
		// do not leave an orphaned attachment behind
		if n.Media != nil {
			if derr := s.mediaSvc.Delete(ctx, n.Media.StorageID); derr != nil {
				s.logger.Warn("deleting orphaned notice attachment", "error", derr)
			}
		}
		return Notice{}, errors.Wrap(err, "creating notice")
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id string) (Notice, error) {
	n, err := s.repo.GetNoticeByID(ctx, id)
	if err != nil {
		return Notice{}, err
	}
	if n.Expired(time.Now().UTC()) {
		return Notice{}, ErrNotFound
	}
	return n, nil
}

func (s *service) QueryAll(ctx context.Context) ([]Notice, error) {
	return s.repo.QueryAllNotices(ctx, time.Now().UTC())
}

func (s *service) Edit(ctx context.Context, id string, un UpdateNotice) (Notice, error) {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return Notice{}, err
	}
	if un.Title != "" {
		n.Title = un.Title
	}
	if un.Description != "" {
		n.Description = un.Description
	}
	if un.ExpiresAt != nil {
		n.ExpiresAt = un.ExpiresAt.UTC()
	}
	if err = s.repo.UpdateNotice(ctx, n); err != nil {
		return Notice{}, errors.Wrap(err, "updating notice")
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.GetNoticeByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Media != nil {
		if err = s.mediaSvc.Delete(ctx, n.Media.StorageID); err != nil {
			return errors.Wrap(err, "deleting notice attachment")
		}
	}
	_, err = s.repo.DeleteNoticesByID(ctx, id)
	return err
}

func (s *service) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "finding expired notices")
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(expired))
	for _, n := range expired {
		if n.Media != nil {
			if err = s.mediaSvc.Delete(ctx, n.Media.StorageID); err != nil {
				s.logger.Warn("deleting expired notice attachment", "id", n.ID, "error", err)
				continue // retry on the next sweep
			}
		}
		ids = append(ids, n.ID)
	}
	return s.repo.DeleteNoticesByID(ctx, ids...)
}
