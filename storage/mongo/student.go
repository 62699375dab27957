package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/student"
)

type studentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Code        string             `bson:"code"`
	CodeNumber  int                `bson:"code_number"`
	Name        string             `bson:"name"`
	DOB         time.Time          `bson:"dob"`
	Grade       string             `bson:"grade"`
	Division    string             `bson:"division"`
	GuardianIDs []string           `bson:"guardian_ids"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func newStudentDoc(st student.Student) studentDoc {
	doc := studentDoc{
		Code:        st.Code,
		Name:        st.Name,
		DOB:         st.DOB,
		Grade:       st.Grade,
		Division:    st.Division,
		GuardianIDs: st.GuardianIDs,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
	if n, ok := student.ParseCode(st.Code); ok {
		doc.CodeNumber = n
	}
	if v, ok := oid(st.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc studentDoc) toStudent() student.Student {
	guardians := doc.GuardianIDs
	if guardians == nil {
		guardians = []string{}
	}
	return student.Student{
		ID:          doc.ID.Hex(),
		Code:        doc.Code,
		Name:        doc.Name,
		DOB:         doc.DOB,
		Grade:       doc.Grade,
		Division:    doc.Division,
		GuardianIDs: guardians,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

type StudentRepository struct {
	coll *mongo.Collection
}

var _ student.Repository = (*StudentRepository)(nil)

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{coll: db.db.Collection(collStudents)}
}

func (repo *StudentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	doc := newStudentDoc(st)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		if isDup(err) {
			return student.Student{}, student.ErrCodeTaken
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStudent(), nil
}

func (repo *StudentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	v, ok := oid(id)
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	var doc studentDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student")
	}
	return doc.toStudent(), nil
}

func (repo *StudentRepository) GetStudentByCode(ctx context.Context, code string) (student.Student, error) {
	var doc studentDoc
	err := repo.coll.FindOne(ctx, bson.M{"code": caseExact(code)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by code")
	}
	return doc.toStudent(), nil
}

func (repo *StudentRepository) MaxCodeNumber(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "code_number", Value: -1}})
	var doc studentDoc
	err := repo.coll.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "scanning max student code")
	}
	return doc.CodeNumber, nil
}

func (repo *StudentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, int, error) {
	filter.Clean()

	query := bson.M{}
	if filter.Name != "" {
		query["name"] = primitive.Regex{Pattern: regexEscape(filter.Name), Options: "i"}
	}
	if filter.Grade != "" {
		query["grade"] = caseExact(filter.Grade)
	}
	if filter.Division != "" {
		query["division"] = caseExact(filter.Division)
	}
	if filter.Code != "" {
		query["code"] = caseExact(filter.Code)
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}
	dir := 1
	if filter.Sort == "desc" {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "code_number", Value: dir}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "filtering students")
	}
	sts, err := decodeStudents(ctx, cur)
	return sts, int(total), err
}

func (repo *StudentRepository) FilterByClass(ctx context.Context, grade, division string) ([]student.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code_number", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{
		"grade":    caseExact(grade),
		"division": caseExact(division),
	}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "filtering students by class")
	}
	return decodeStudents(ctx, cur)
}

func (repo *StudentRepository) ChildrenOf(ctx context.Context, accountID string, filter student.QueryFilter) ([]student.Student, int, error) {
	filter.Clean()

	query := bson.M{"guardian_ids": accountID}
	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting children")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "code_number", Value: 1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding children")
	}
	sts, err := decodeStudents(ctx, cur)
	return sts, int(total), err
}

func (repo *StudentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	v, ok := oid(st.ID)
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	doc := newStudentDoc(st)
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, doc)
	if err != nil {
		if isDup(err) {
			return student.Student{}, student.ErrCodeTaken
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if res.MatchedCount == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *StudentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	_, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	return errors.Wrap(err, "deleting students")
}

func (repo *StudentRepository) LinkGuardian(ctx context.Context, studentCode, accountID string) error {
	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"code": caseExact(studentCode)},
		bson.M{
			"$addToSet": bson.M{"guardian_ids": accountID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrap(err, "linking guardian")
	}
	if res.MatchedCount == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *StudentRepository) UnlinkGuardian(ctx context.Context, accountID string) error {
	_, err := repo.coll.UpdateMany(ctx,
		bson.M{"guardian_ids": accountID},
		bson.M{
			"$pull": bson.M{"guardian_ids": accountID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return errors.Wrap(err, "unlinking guardian")
}

func decodeStudents(ctx context.Context, cur *mongo.Cursor) ([]student.Student, error) {
	defer cur.Close(ctx)
	sts := make([]student.Student, 0)
	for cur.Next(ctx) {
		var doc studentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding student")
		}
		sts = append(sts, doc.toStudent())
	}
	return sts, errors.Wrap(cur.Err(), "iterating students")
}
