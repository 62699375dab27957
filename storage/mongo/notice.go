package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/notice"
)

type noticeMediaDoc struct {
	URL       string `bson:"url"`
	StorageID string `bson:"storage_id"`
	Type      string `bson:"type"`
}

type noticeDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Media       *noticeMediaDoc    `bson:"media,omitempty"`
	PostedBy    string             `bson:"posted_by"`
	ExpiresAt   time.Time          `bson:"expires_at"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func newNoticeDoc(n notice.Notice) noticeDoc {
	doc := noticeDoc{
		Title:       n.Title,
		Description: n.Description,
		PostedBy:    n.PostedBy,
		ExpiresAt:   n.ExpiresAt,
		CreatedAt:   n.CreatedAt,
	}
	if n.Media != nil {
		doc.Media = &noticeMediaDoc{URL: n.Media.URL, StorageID: n.Media.StorageID, Type: n.Media.Type}
	}
	if v, ok := oid(n.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc noticeDoc) toNotice() notice.Notice {
	n := notice.Notice{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		PostedBy:    doc.PostedBy,
		ExpiresAt:   doc.ExpiresAt,
		CreatedAt:   doc.CreatedAt,
	}
	if doc.Media != nil {
		n.Media = &notice.Media{URL: doc.Media.URL, StorageID: doc.Media.StorageID, Type: doc.Media.Type}
	}
	return n
}

type NoticeRepository struct {
	coll *mongo.Collection
}

var _ notice.Repository = (*NoticeRepository)(nil)

func NewNoticeRepository(db *DB) *NoticeRepository {
	return &NoticeRepository{coll: db.db.Collection(collNotices)}
}

func (repo *NoticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	doc := newNoticeDoc(n)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "inserting notice")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toNotice(), nil
}

func (repo *NoticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	v, ok := oid(id)
	if !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	var doc noticeDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return notice.Notice{}, notice.ErrNotFound
	}
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "finding notice")
	}
	return doc.toNotice(), nil
}

func (repo *NoticeRepository) QueryAllNotices(ctx context.Context, now time.Time) ([]notice.Notice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"expires_at": bson.M{"$gt": now}}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	return decodeNotices(ctx, cur)
}

func (repo *NoticeRepository) FindExpired(ctx context.Context, now time.Time) ([]notice.Notice, error) {
	cur, err := repo.coll.Find(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return nil, errors.Wrap(err, "finding expired notices")
	}
	return decodeNotices(ctx, cur)
}

func (repo *NoticeRepository) UpdateNotice(ctx context.Context, n notice.Notice) error {
	v, ok := oid(n.ID)
	if !ok {
		return notice.ErrNotFound
	}
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, newNoticeDoc(n))
	if err != nil {
		return errors.Wrap(err, "updating notice")
	}
	if res.MatchedCount == 0 {
		return notice.ErrNotFound
	}
	return nil
}

func (repo *NoticeRepository) DeleteNoticesByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	if err != nil {
		return 0, errors.Wrap(err, "deleting notices")
	}
	return int(res.DeletedCount), nil
}

func decodeNotices(ctx context.Context, cur *mongo.Cursor) ([]notice.Notice, error) {
	defer cur.Close(ctx)
	notices := make([]notice.Notice, 0)
	for cur.Next(ctx) {
		var doc noticeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding notice")
		}
		notices = append(notices, doc.toNotice())
	}
	return notices, errors.Wrap(cur.Err(), "iterating notices")
}
