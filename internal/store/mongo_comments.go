package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-api/backend/internal/models"
)

type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID  string             `bson:"projectId"`
	Sender     string             `bson:"sender"`
	Message    string             `bson:"message"`
	Likes      []string           `bson:"likes"`
	Dislikes   []string           `bson:"dislikes"`
	IsReply    bool               `bson:"isReply"`
	HasReply   bool               `bson:"hasReply"`
	ReplyGroup string             `bson:"replyGroup,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *commentDoc) model() *models.Comment {
	return &models.Comment{
		ID:         d.ID.Hex(),
		ProjectID:  d.ProjectID,
		Sender:     d.Sender,
		Message:    d.Message,
		Likes:      d.Likes,
		Dislikes:   d.Dislikes,
		IsReply:    d.IsReply,
		HasReply:   d.HasReply,
		ReplyGroup: d.ReplyGroup,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// CreateComment inserts c, links it to its project and, for a reply, marks
// the root comment as having replies.
func (s *MongoStore) CreateComment(ctx context.Context, c *models.Comment) error {
	pid, err := objectID(c.ProjectID)
	if err != nil {
		return err
	}
	var groupID primitive.ObjectID
	if c.IsReply {
		if groupID, err = objectID(c.ReplyGroup); err != nil {
			return err
		}
	}

	now := s.now()
	doc := commentDoc{
		ID:         primitive.NewObjectID(),
		ProjectID:  c.ProjectID,
		Sender:     c.Sender,
		Message:    c.Message,
		Likes:      []string{},
		Dislikes:   []string{},
		IsReply:    c.IsReply,
		ReplyGroup: c.ReplyGroup,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return mapMongoErr("mongo insert comment", err)
	}
	c.ID = doc.ID.Hex()
	c.Likes, c.Dislikes = doc.Likes, doc.Dislikes
	c.CreatedAt, c.UpdatedAt = now, now

	if c.IsReply {
		if _, err := s.comments.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{"$set": bson.M{"hasReply": true}}); err != nil {
			return mapMongoErr("mongo mark reply group", err)
		}
	}
	if _, err := s.projects.UpdateOne(ctx, bson.M{"_id": pid}, bson.M{"$push": bson.M{"comments": c.ID}}); err != nil {
		return mapMongoErr("mongo link comment", err)
	}
	return nil
}

func (s *MongoStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoErr("mongo find comment", err)
	}
	return doc.model(), nil
}

// ListComments returns the root comments of a project, oldest first.
func (s *MongoStore) ListComments(ctx context.Context, projectID string) ([]models.Comment, error) {
	return s.findComments(ctx, bson.M{"projectId": projectID, "isReply": false})
}

// ListReplies returns the replies in groupID, oldest first.
func (s *MongoStore) ListReplies(ctx context.Context, projectID, groupID string) ([]models.Comment, error) {
	return s.findComments(ctx, bson.M{"projectId": projectID, "replyGroup": groupID})
}

// DeleteComment removes c, and its replies when c is a root comment, and
// unlinks them from the project.
func (s *MongoStore) DeleteComment(ctx context.Context, c *models.Comment) error {
	oid, err := objectID(c.ID)
	if err != nil {
		return err
	}
	removed := []string{c.ID}
	if !c.IsReply {
		replies, err := s.ListReplies(ctx, c.ProjectID, c.ID)
		if err != nil {
			return err
		}
		for _, r := range replies {
			removed = append(removed, r.ID)
		}
		if _, err := s.comments.DeleteMany(ctx, bson.M{"replyGroup": c.ID}); err != nil {
			return mapMongoErr("mongo delete replies", err)
		}
	}
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapMongoErr("mongo delete comment", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if pid, err := objectID(c.ProjectID); err == nil {
		_, err = s.projects.UpdateOne(ctx, bson.M{"_id": pid}, bson.M{"$pull": bson.M{"comments": bson.M{"$in": removed}}})
		if err != nil {
			return mapMongoErr("mongo unlink comment", err)
		}
	}
	return nil
}

// AddCommentLike adds userID to the comment's likes in one atomic update.
func (s *MongoStore) AddCommentLike(ctx context.Context, commentID, userID string) (models.UpdateResult, error) {
	return s.updateSet(ctx, s.comments.Name(), commentID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveCommentLike pulls userID from the comment's likes in one atomic update.
func (s *MongoStore) RemoveCommentLike(ctx context.Context, commentID, userID string) (models.UpdateResult, error) {
	return s.updateSet(ctx, s.comments.Name(), commentID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (s *MongoStore) findComments(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := s.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapMongoErr("mongo find comments", err)
	}
	defer cur.Close(ctx)

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapMongoErr("mongo decode comments", err)
	}
	out := make([]models.Comment, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].model())
	}
	return out, nil
}
