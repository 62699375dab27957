package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/diary"
)

type diaryDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Category   string             `bson:"category"`
	Grade      string             `bson:"grade,omitempty"`
	Division   string             `bson:"division,omitempty"`
	StudentID  string             `bson:"student_id,omitempty"`
	AuthorID   string             `bson:"author_id"`
	AuthorRole string             `bson:"author_role"`
	ExpiresAt  time.Time          `bson:"expires_at"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func newDiaryDoc(e diary.Entry) diaryDoc {
	doc := diaryDoc{
		Title:      e.Title,
		Content:    e.Content,
		Category:   e.Category,
		Grade:      e.Grade,
		Division:   e.Division,
		StudentID:  e.StudentID,
		AuthorID:   e.AuthorID,
		AuthorRole: e.AuthorRole,
		ExpiresAt:  e.ExpiresAt,
		CreatedAt:  e.CreatedAt,
	}
	if v, ok := oid(e.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc diaryDoc) toEntry() diary.Entry {
	return diary.Entry{
		ID:         doc.ID.Hex(),
		Title:      doc.Title,
		Content:    doc.Content,
		Category:   doc.Category,
		Grade:      doc.Grade,
		Division:   doc.Division,
		StudentID:  doc.StudentID,
		AuthorID:   doc.AuthorID,
		AuthorRole: doc.AuthorRole,
		ExpiresAt:  doc.ExpiresAt,
		CreatedAt:  doc.CreatedAt,
	}
}

type DiaryRepository struct {
	coll *mongo.Collection
}

var _ diary.Repository = (*DiaryRepository)(nil)

func NewDiaryRepository(db *DB) *DiaryRepository {
	return &DiaryRepository{coll: db.db.Collection(collDiary)}
}

func (repo *DiaryRepository) CreateEntry(ctx context.Context, e diary.Entry) (diary.Entry, error) {
	doc := newDiaryDoc(e)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		return diary.Entry{}, errors.Wrap(err, "inserting diary entry")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toEntry(), nil
}

func (repo *DiaryRepository) GetEntryByID(ctx context.Context, id string) (diary.Entry, error) {
	v, ok := oid(id)
	if !ok {
		return diary.Entry{}, diary.ErrNotFound
	}
	var doc diaryDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return diary.Entry{}, diary.ErrNotFound
	}
	if err != nil {
		return diary.Entry{}, errors.Wrap(err, "finding diary entry")
	}
	return doc.toEntry(), nil
}

func (repo *DiaryRepository) FilterEntries(ctx context.Context, qf diary.QueryFilter, now time.Time) ([]diary.Entry, int, error) {
	// the TTL reaper runs on its own clock, so expiry is filtered here too
	query := bson.M{"expires_at": bson.M{"$gt": now}}
	if qf.StudentID != "" {
		query["student_id"] = qf.StudentID
	}
	if qf.Grade != "" {
		query["grade"] = qf.Grade
	}
	if qf.Division != "" {
		query["division"] = qf.Division
	}
	if qf.Category != "" {
		query["category"] = qf.Category
	}
	if qf.Author != "" {
		query["author_id"] = qf.Author
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting diary entries")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(qf.Offset())).
		SetLimit(int64(qf.Limit))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "filtering diary entries")
	}
	defer cur.Close(ctx)

	entries := make([]diary.Entry, 0)
	for cur.Next(ctx) {
		var doc diaryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, errors.Wrap(err, "decoding diary entry")
		}
		entries = append(entries, doc.toEntry())
	}
	return entries, int(total), errors.Wrap(cur.Err(), "iterating diary entries")
}

func (repo *DiaryRepository) UpdateEntry(ctx context.Context, e diary.Entry) error {
	v, ok := oid(e.ID)
	if !ok {
		return diary.ErrNotFound
	}
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, newDiaryDoc(e))
	if err != nil {
		return errors.Wrap(err, "updating diary entry")
	}
	if res.MatchedCount == 0 {
		return diary.ErrNotFound
	}
	return nil
}

func (repo *DiaryRepository) DeleteEntriesByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	if err != nil {
		return 0, errors.Wrap(err, "deleting diary entries")
	}
	return int(res.DeletedCount), nil
}
