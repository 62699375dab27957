package mediasvc

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
)

// ossService stores media in an Aliyun OSS bucket. The object key doubles
// as the StorageID.
type ossService struct {
	bucket  *oss.Bucket
	baseURL string
}

var _ core.MediaService = (*ossService)(nil)

func NewOSSService(conf core.OSSConfig) (*ossService, error) {
	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating oss client")
	}
	bucket, err := client.Bucket(conf.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening oss bucket")
	}
	return &ossService{
		bucket:  bucket,
		baseURL: fmt.Sprintf("https://%s.%s", conf.Bucket, strings.TrimPrefix(conf.Endpoint, "https://")),
	}, nil
}

func (svc *ossService) Upload(_ context.Context, f core.MediaFile) (core.StoredMedia, error) {
	key := objectKey(f.Name)
	opts := []oss.Option{}
	if f.ContentType != "" {
		opts = append(opts, oss.ContentType(f.ContentType))
	}
	if err := svc.bucket.PutObject(key, f.Body, opts...); err != nil {
		return core.StoredMedia{}, errors.Wrap(core.ErrMediaUpload, err.Error())
	}
	return core.StoredMedia{
		URL:       svc.baseURL + "/" + key,
		StorageID: key,
		MediaType: MediaType(f.ContentType),
	}, nil
}

func (svc *ossService) Delete(_ context.Context, storageID string) error {
	return errors.Wrap(svc.bucket.DeleteObject(storageID), "deleting oss object")
}

// objectKey namespaces uploads by month and randomizes the name to avoid
// collisions between same-named files.
func objectKey(filename string) string {
	return fmt.Sprintf("media/%s/%s%s",
		time.Now().UTC().Format("2006-01"),
		uuid.New().String(),
		strings.ToLower(path.Ext(filename)),
	)
}

// MediaType maps a content type onto the stored media type.
func MediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "photo"
}
