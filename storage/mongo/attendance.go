package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/attendance"
)

type attendanceDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SubjectID string             `bson:"subject_id"`
	Kind      string             `bson:"kind"`
	Status    string             `bson:"status"`
	MarkedBy  string             `bson:"marked_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func newAttendanceDoc(r attendance.Record) attendanceDoc {
	doc := attendanceDoc{
		SubjectID: r.SubjectID,
		Kind:      r.Kind,
		Status:    r.Status,
		MarkedBy:  r.MarkedBy,
		CreatedAt: r.CreatedAt,
	}
	if v, ok := oid(r.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc attendanceDoc) toRecord() attendance.Record {
	return attendance.Record{
		ID:        doc.ID.Hex(),
		SubjectID: doc.SubjectID,
		Kind:      doc.Kind,
		Status:    doc.Status,
		MarkedBy:  doc.MarkedBy,
		CreatedAt: doc.CreatedAt,
	}
}

type AttendanceRepository struct {
	coll *mongo.Collection
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{coll: db.db.Collection(collAttendance)}
}

func (repo *AttendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	doc := newAttendanceDoc(r)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toRecord(), nil
}

func (repo *AttendanceRepository) LatestBySubject(ctx context.Context, kind, subjectID string) (attendance.Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc attendanceDoc
	err := repo.coll.FindOne(ctx, bson.M{"kind": kind, "subject_id": subjectID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "finding latest attendance record")
	}
	return doc.toRecord(), nil
}

func (repo *AttendanceRepository) QueryByDay(ctx context.Context, kind string, start, end time.Time) ([]attendance.Record, error) {
	return repo.query(ctx, bson.M{
		"kind":       kind,
		"created_at": bson.M{"$gte": start, "$lt": end},
	})
}

func (repo *AttendanceRepository) QueryBySubjectAndDay(ctx context.Context, kind, subjectID string, start, end time.Time) ([]attendance.Record, error) {
	return repo.query(ctx, bson.M{
		"kind":       kind,
		"subject_id": subjectID,
		"created_at": bson.M{"$gte": start, "$lt": end},
	})
}

func (repo *AttendanceRepository) DeleteRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	v, ok := oid(id)
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	var doc attendanceDoc
	err := repo.coll.FindOneAndDelete(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "deleting attendance record")
	}
	return doc.toRecord(), nil
}

func (repo *AttendanceRepository) query(ctx context.Context, query bson.M) ([]attendance.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	defer cur.Close(ctx)

	recs := make([]attendance.Record, 0)
	for cur.Next(ctx) {
		var doc attendanceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding attendance record")
		}
		recs = append(recs, doc.toRecord())
	}
	return recs, errors.Wrap(cur.Err(), "iterating attendance records")
}
