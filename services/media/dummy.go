package mediasvc

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core"
)

// DummyService keeps uploads in memory, for tests.
type DummyService struct {
	mu      sync.Mutex
	Objects map[string]core.MediaFile
	Deleted []string
	// FailUploads makes every Upload return core.ErrMediaUpload.
	FailUploads bool
}

var _ core.MediaService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{Objects: make(map[string]core.MediaFile)}
}

func (svc *DummyService) Upload(_ context.Context, f core.MediaFile) (core.StoredMedia, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.FailUploads {
		return core.StoredMedia{}, core.ErrMediaUpload
	}
	key := uuid.New().String()
	svc.Objects[key] = f
	return core.StoredMedia{
		URL:       "https://media.test/" + key,
		StorageID: key,
		MediaType: MediaType(f.ContentType),
	}, nil
}

func (svc *DummyService) Delete(_ context.Context, storageID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	delete(svc.Objects, storageID)
	svc.Deleted = append(svc.Deleted, storageID)
	return nil
}

// Stored reports whether an object is still held.
func (svc *DummyService) Stored(storageID string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, ok := svc.Objects[storageID]
	return ok
}
