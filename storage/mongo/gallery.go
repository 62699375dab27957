package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/gallery"
)

type galleryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	URL       string             `bson:"url"`
	StorageID string             `bson:"storage_id"`
	Title     string             `bson:"title,omitempty"`
	MediaType string             `bson:"media_type"`
	Event     bool               `bson:"event"`
	PostedBy  string             `bson:"posted_by"`
	CreatedAt time.Time          `bson:"created_at"`
}

func newGalleryDoc(it gallery.Item) galleryDoc {
	doc := galleryDoc{
		URL:       it.URL,
		StorageID: it.StorageID,
		Title:     it.Title,
		MediaType: it.MediaType,
		Event:     it.Event,
		PostedBy:  it.PostedBy,
		CreatedAt: it.CreatedAt,
	}
	if v, ok := oid(it.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc galleryDoc) toItem() gallery.Item {
	return gallery.Item{
		ID:        doc.ID.Hex(),
		URL:       doc.URL,
		StorageID: doc.StorageID,
		Title:     doc.Title,
		MediaType: doc.MediaType,
		Event:     doc.Event,
		PostedBy:  doc.PostedBy,
		CreatedAt: doc.CreatedAt,
	}
}

type GalleryRepository struct {
	coll *mongo.Collection
}

var _ gallery.Repository = (*GalleryRepository)(nil)

func NewGalleryRepository(db *DB) *GalleryRepository {
	return &GalleryRepository{coll: db.db.Collection(collGallery)}
}

func (repo *GalleryRepository) CreateItem(ctx context.Context, it gallery.Item) (gallery.Item, error) {
	doc := newGalleryDoc(it)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		return gallery.Item{}, errors.Wrap(err, "inserting gallery item")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toItem(), nil
}

func (repo *GalleryRepository) GetItemByID(ctx context.Context, id string) (gallery.Item, error) {
	v, ok := oid(id)
	if !ok {
		return gallery.Item{}, gallery.ErrNotFound
	}
	var doc galleryDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return gallery.Item{}, gallery.ErrNotFound
	}
	if err != nil {
		return gallery.Item{}, errors.Wrap(err, "finding gallery item")
	}
	return doc.toItem(), nil
}

func (repo *GalleryRepository) GetItemsByID(ctx context.Context, ids ...string) ([]gallery.Item, error) {
	cur, err := repo.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	if err != nil {
		return nil, errors.Wrap(err, "finding gallery items")
	}
	return decodeItems(ctx, cur)
}

func (repo *GalleryRepository) QueryPool(ctx context.Context, event bool) ([]gallery.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{"event": event}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying gallery pool")
	}
	return decodeItems(ctx, cur)
}

func (repo *GalleryRepository) FilterItems(ctx context.Context, mf gallery.ManageFilter) ([]gallery.Item, int, error) {
	query := bson.M{}
	switch mf.Type {
	case gallery.TypeEvents:
		query["event"] = true
	case gallery.TypeGallery:
		query["event"] = false
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting gallery items")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(mf.Offset())).
		SetLimit(int64(mf.Limit))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "filtering gallery items")
	}
	items, err := decodeItems(ctx, cur)
	return items, int(total), err
}

func (repo *GalleryRepository) UpdateItem(ctx context.Context, it gallery.Item) error {
	v, ok := oid(it.ID)
	if !ok {
		return gallery.ErrNotFound
	}
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, newGalleryDoc(it))
	if err != nil {
		return errors.Wrap(err, "updating gallery item")
	}
	if res.MatchedCount == 0 {
		return gallery.ErrNotFound
	}
	return nil
}

func (repo *GalleryRepository) DeleteItemsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	if err != nil {
		return 0, errors.Wrap(err, "deleting gallery items")
	}
	return int(res.DeletedCount), nil
}

func decodeItems(ctx context.Context, cur *mongo.Cursor) ([]gallery.Item, error) {
	defer cur.Close(ctx)
	items := make([]gallery.Item, 0)
	for cur.Next(ctx) {
		var doc galleryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding gallery item")
		}
		items = append(items, doc.toItem())
	}
	return items, errors.Wrap(cur.Err(), "iterating gallery items")
}
