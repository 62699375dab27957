package notice

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
)

// purgeRepo stubs just enough of Repository for PurgeExpired.
type purgeRepo struct {
	Repository
	notices map[string]Notice
}

func (r *purgeRepo) FindExpired(_ context.Context, now time.Time) ([]Notice, error) {
	var out []Notice
	for _, n := range r.notices {
		if n.Expired(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *purgeRepo) DeleteNoticesByID(_ context.Context, ids ...string) (int, error) {
	for _, id := range ids {
		delete(r.notices, id)
	}
	return len(ids), nil
}

type purgeMedia struct {
	core.MediaService
	failing map[string]bool
	deleted []string
}

func (m *purgeMedia) Delete(_ context.Context, storageID string) error {
	if m.failing[storageID] {
		return errors.New("storage unavailable")
	}
	m.deleted = append(m.deleted, storageID)
	return nil
}

type nopLogger struct{ core.Logger }

func (nopLogger) Warn(string, ...interface{}) {}

func TestService_PurgeExpired(t *testing.T) {
	now := time.Now().UTC()
	repo := &purgeRepo{notices: map[string]Notice{
		"live":    {ID: "live", ExpiresAt: now.Add(time.Hour)},
		"plain":   {ID: "plain", ExpiresAt: now.Add(-time.Hour)},
		"media":   {ID: "media", ExpiresAt: now.Add(-time.Hour), Media: &Media{StorageID: "obj-1"}},
		"failing": {ID: "failing", ExpiresAt: now.Add(-time.Hour), Media: &Media{StorageID: "obj-2"}},
	}}
	media := &purgeMedia{failing: map[string]bool{"obj-2": true}}
	svc := NewService(repo, media, nopLogger{})

	n, err := svc.PurgeExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeExpired() = %d, want 2", n)
	}
	if _, ok := repo.notices["live"]; !ok {
		t.Error("live notice was purged")
	}
	if _, ok := repo.notices["plain"]; ok {
		t.Error("expired notice survived")
	}
	if _, ok := repo.notices["media"]; ok {
		t.Error("expired notice with attachment survived")
	}
	if len(media.deleted) != 1 || media.deleted[0] != "obj-1" {
		t.Errorf("media deleted = %v, want [obj-1]", media.deleted)
	}

	// a notice whose attachment could not be removed stays for the next sweep
	if _, ok := repo.notices["failing"]; !ok {
		t.Fatal("notice with failing media delete was purged early")
	}

	media.failing = nil
	n, err = svc.PurgeExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("PurgeExpired() retry error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() retry = %d, want 1", n)
	}
	if _, ok := repo.notices["failing"]; ok {
		t.Error("notice survived after its attachment cleanup succeeded")
	}
	if len(media.deleted) != 2 {
		t.Errorf("media deleted = %v, want obj-1 and obj-2", media.deleted)
	}
}
