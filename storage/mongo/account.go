package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vasu3050/schoolsite/core/account"
)

type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone,omitempty"`
	Roles        []string           `bson:"roles"`
	Status       string             `bson:"status"`
	PasswordHash []byte             `bson:"password_hash"`
	RefreshToken string             `bson:"refresh_token,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func newAccountDoc(acc account.Account) accountDoc {
	doc := accountDoc{
		Name:         acc.Name,
		Email:        acc.Email,
		Phone:        acc.Phone,
		Roles:        acc.Roles,
		Status:       acc.Status,
		PasswordHash: acc.PasswordHash,
		RefreshToken: acc.RefreshToken,
		CreatedAt:    acc.CreatedAt,
		UpdatedAt:    acc.UpdatedAt,
	}
	if v, ok := oid(acc.ID); ok {
		doc.ID = v
	}
	return doc
}

func (doc accountDoc) toAccount() account.Account {
	return account.Account{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Roles:        doc.Roles,
		Status:       doc.Status,
		PasswordHash: doc.PasswordHash,
		RefreshToken: doc.RefreshToken,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

type AccountRepository struct {
	coll *mongo.Collection
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{coll: db.db.Collection(collAccounts)}
}

func (repo *AccountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	doc := newAccountDoc(acc)
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		if isDup(err) {
			return account.Account{}, account.ErrEmailTaken
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toAccount(), nil
}

func (repo *AccountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	v, ok := oid(id)
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	var doc accountDoc
	err := repo.coll.FindOne(ctx, bson.M{"_id": v}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "finding account")
	}
	return doc.toAccount(), nil
}

func (repo *AccountRepository) GetAccountsByID(ctx context.Context, ids ...string) ([]account.Account, error) {
	cur, err := repo.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	if err != nil {
		return nil, errors.Wrap(err, "finding accounts")
	}
	return decodeAccounts(ctx, cur)
}

func (repo *AccountRepository) GetAccountByNameOrEmail(ctx context.Context, name, email string) (account.Account, error) {
	var doc accountDoc
	err := repo.coll.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"name": name},
		bson.M{"email": email},
	}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "finding account by name or email")
	}
	return doc.toAccount(), nil
}

func (repo *AccountRepository) FilterAccounts(ctx context.Context, filter account.QueryFilter) ([]account.Account, int, error) {
	filter.Clean()

	query := bson.M{}
	if filter.Search != "" {
		rx := primitive.Regex{Pattern: regexEscape(filter.Search), Options: "i"}
		query["$or"] = bson.A{bson.M{"name": rx}, bson.M{"email": rx}}
	}
	if filter.Role != "" {
		query["roles"] = filter.Role
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting accounts")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "filtering accounts")
	}
	accs, err := decodeAccounts(ctx, cur)
	return accs, int(total), err
}

func (repo *AccountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	v, ok := oid(acc.ID)
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	doc := newAccountDoc(acc)
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": v}, doc)
	if err != nil {
		if isDup(err) {
			return account.Account{}, account.ErrEmailTaken
		}
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if res.MatchedCount == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

func (repo *AccountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	v, ok := oid(id)
	if !ok {
		return account.ErrNotFound
	}
	update := bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refresh_token": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": v}, update)
	if err != nil {
		return errors.Wrap(err, "setting refresh token")
	}
	if res.MatchedCount == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo *AccountRepository) DeleteAccountsByID(ctx context.Context, ids ...string) error {
	_, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids(ids)}})
	return errors.Wrap(err, "deleting accounts")
}

func decodeAccounts(ctx context.Context, cur *mongo.Cursor) ([]account.Account, error) {
	defer cur.Close(ctx)
	accs := make([]account.Account, 0)
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding account")
		}
		accs = append(accs, doc.toAccount())
	}
	return accs, errors.Wrap(cur.Err(), "iterating accounts")
}
