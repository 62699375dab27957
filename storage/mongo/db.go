package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Vasu3050/schoolsite/core"
)

// Collection names
const (
	collAccounts   = "accounts"
	collStudents   = "students"
	collClasses    = "classes"
	collAttendance = "attendance"
	collDiary      = "diary"
	collNotices    = "notices"
	collGallery    = "gallery"
)

const connectTimeout = 10 * time.Second

// DB wraps one database handle shared by all repositories.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects and pings the deployment.
func Open(ctx context.Context, conf core.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return &DB{client: client, db: client.Database(conf.Database)}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// constraints here are the arbiters for email and student-code conflicts;
// the TTL indexes reap expired diary entries and notices (attachment
// cleanup for notices is handled by the scheduled sweep before the TTL
// fires, see the notice service).
func (d *DB) EnsureIndexes(ctx context.Context) error {
	for _, ix := range []struct {
		coll  string
		model mongo.IndexModel
	}{
		{collAccounts, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{collStudents, mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{collClasses, mongo.IndexModel{
			Keys:    bson.D{{Key: "grade", Value: 1}, {Key: "section", Value: 1}, {Key: "academic_year", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{collAttendance, mongo.IndexModel{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: 1}}}},
		{collDiary, mongo.IndexModel{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)}},
		{collNotices, mongo.IndexModel{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)}},
		{collGallery, mongo.IndexModel{Keys: bson.D{{Key: "event", Value: 1}, {Key: "created_at", Value: 1}}}},
	} {
		if _, err := d.db.Collection(ix.coll).Indexes().CreateOne(ctx, ix.model); err != nil {
			return errors.Wrapf(err, "creating index on %s", ix.coll)
		}
	}
	return nil
}

// isDup reports whether err is a unique-index violation (server code
// 11000), which the driver surfaces as a write or bulk-write exception.
func isDup(err error) bool {
	switch e := errors.Cause(err).(type) {
	case mongo.WriteException:
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	case mongo.BulkWriteException:
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	case mongo.CommandError:
		return e.Code == 11000
	}
	return false
}

// regexEscape neutralizes user input used inside a $regex match.
func regexEscape(s string) string {
	return regexp.QuoteMeta(s)
}

// caseExact builds a case-insensitive whole-value match.
func caseExact(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexEscape(s) + "$", Options: "i"}
}

// oid parses a hex object id; the zero ObjectID and false for bad input.
func oid(id string) (primitive.ObjectID, bool) {
	v, err := primitive.ObjectIDFromHex(id)
	return v, err == nil
}

// oids parses the valid ids of the given set, silently skipping bad ones
// so lookups treat them as simply not found.
func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if v, ok := oid(id); ok {
			out = append(out, v)
		}
	}
	return out
}
