package core

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

var ErrMediaUpload = errors.New("media upload failed")

type (
	// MediaFile is one file handed to the media store.
	MediaFile struct {
		Name        string
		ContentType string
		Body        io.Reader
	}

	// StoredMedia identifies an uploaded object.
	StoredMedia struct {
		URL       string
		StorageID string
		// MediaType is "photo" or "video", derived from the content type.
		MediaType string
	}

	// MediaService is the external object-storage collaborator. Failures
	// abort the request; no retries are performed.
	MediaService interface {
		Upload(ctx context.Context, f MediaFile) (StoredMedia, error)
		Delete(ctx context.Context, storageID string) error
	}
)
