package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/class"
)

type subjectTeacherDoc struct {
	Subject   string `bson:"subject"`
	TeacherID string `bson:"teacher_id"`
}

type classDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	Grade           string              `bson:"grade"`
	Section         string              `bson:"section"`
	AcademicYear    string              `bson:"academic_year"`
	Code            string              `bson:"code"`
	ClassTeacherIDs []string            `bson:"class_teacher_ids"`
	SubjectTeachers []subjectTeacherDoc `bson:"subject_teachers"`
	Status          string              `bson:"status"`
	CreatedBy       string              `bson:"created_by"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}

func newClassDoc(c class.Class) classDoc {
	doc := classDoc{
		Grade:           c.Grade,
		Section:         c.Section,
		AcademicYear:    c.AcademicYear,
		Code:            c.Code,
		ClassTeacherIDs: c.ClassTeacherIDs,
		SubjectTeachers: make([]subjectTeacherDoc, 0, len(c.SubjectTeachers)),
		Status:          c.Status,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	for _, st := range c.SubjectTeachers {
		doc.SubjectTeachers = append(doc.SubjectTeachers, subjectTeacherDoc{Subject: st.Subject, TeacherID: st.TeacherID})
	}
	if v, ok := oid(c.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc classDoc) toClass() class.Class {
	c := class.Class{
		ID:              doc.ID.Hex(),
		Grade:           doc.Grade,
		Section:         doc.Section,
		AcademicYear:    doc.AcademicYear,
		Code:            doc.Code,
		ClassTeacherIDs: doc.ClassTeacherIDs,
		SubjectTeachers: make([]class.SubjectTeacher, 0, len(doc.SubjectTeachers)),
		Status:          doc.Status,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	for _, st := range doc.SubjectTeachers {
		c.SubjectTeachers = append(c.SubjectTeachers, class.SubjectTeacher{Subject: st.Subject, TeacherID: st.TeacherID})
	}
	return c
}

type ClassRepository struct {
	coll *mongo.Collection
}

var _ class.Repository = (*ClassRepository)(nil)

func NewClassRepository(db *DB) *ClassRepository {
	return &ClassRepository{coll: db.db.Collection(collClasses)}
}

func (repo *ClassRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	doc := newClassDoc(c)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		if isDup(err) {
			return class.Class{}, class.ErrExists
		}
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toClass(), nil
}

func (repo *ClassRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	v, ok := oid(id)
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	var doc classDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return class.Class{}, class.ErrNotFound
	}
	if err != nil {
		return class.Class{}, errors.Wrap(err, "finding class")
	}
	return doc.toClass(), nil
}

func (repo *ClassRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return decodeClasses(ctx, cur)
}

func (repo *ClassRepository) ClassesByTeacher(ctx context.Context, accountID string) ([]class.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"class_teacher_ids": accountID},
		bson.M{"subject_teachers.teacher_id": accountID},
	}}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes by teacher")
	}
	return decodeClasses(ctx, cur)
}

func (repo *ClassRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	v, ok := oid(c.ID)
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	doc := newClassDoc(c)
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, doc)
	if err != nil {
		if isDup(err) {
			return class.Class{}, class.ErrExists
		}
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if res.MatchedCount == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return c, nil
}

func (repo *ClassRepository) DeleteClassesByID(ctx context.Context, ids ...string) error {
	_, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	return errors.Wrap(err, "deleting classes")
}

func decodeClasses(ctx context.Context, cur *mongo.Cursor) ([]class.Class, error) {
	defer cur.Close(ctx)
	classes := make([]class.Class, 0)
	for cur.Next(ctx) {
		var doc classDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding class")
		}
		classes = append(classes, doc.toClass())
	}
	return classes, errors.Wrap(cur.Err(), "iterating classes")
}
