package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/portfolio-api/backend/internal/models"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      models.Role        `bson:"role"`
	Avatar    models.Image       `bson:"avatar"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		Role:      d.Role,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CreateUser inserts u and fills in its id and timestamps.
func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return mapMongoErr("mongo insert user", err)
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

// GetUsersByIDs returns the users that exist among ids, in no particular order.
func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, mapMongoErr("mongo find users", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapMongoErr("mongo decode users", err)
	}
	out := make([]models.User, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].model())
	}
	return out, nil
}

func (s *MongoStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.setUserFields(ctx, id, bson.M{"password": hash})
}

func (s *MongoStore) UpdateUsername(ctx context.Context, id, username string) error {
	return s.setUserFields(ctx, id, bson.M{"username": username})
}

func (s *MongoStore) UpdateAvatar(ctx context.Context, id string, avatar models.Image) error {
	return s.setUserFields(ctx, id, bson.M{"avatar": avatar})
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapMongoErr("mongo delete user", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoErr("mongo find user", err)
	}
	return doc.model(), nil
}

func (s *MongoStore) setUserFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	fields["updatedAt"] = s.now()
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return mapMongoErr("mongo update user", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
