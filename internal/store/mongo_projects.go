package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-api/backend/internal/models"
)

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Image       models.Image       `bson:"image"`
	VideoID     string             `bson:"videoId"`
	URL         string             `bson:"url"`
	GitHub      string             `bson:"github"`
	Likes       []string           `bson:"likes"`
	Comments    []string           `bson:"comments"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *projectDoc) model() *models.Project {
	return &models.Project{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		VideoID:     d.VideoID,
		URL:         d.URL,
		GitHub:      d.GitHub,
		Likes:       d.Likes,
		Comments:    d.Comments,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ListProjects returns one page of projects whose title contains q.Search
// (case-insensitive) and the total number of matches.
func (s *MongoStore) ListProjects(ctx context.Context, q models.ProjectQuery) ([]models.Project, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}

	total, err := s.projects.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapMongoErr("mongo count projects", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)
	cur, err := s.projects.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mapMongoErr("mongo find projects", err)
	}
	defer cur.Close(ctx)

	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapMongoErr("mongo decode projects", err)
	}
	out := make([]models.Project, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].model())
	}
	return out, total, nil
}

func (s *MongoStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc projectDoc
	if err := s.projects.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoErr("mongo find project", err)
	}
	return doc.model(), nil
}

// CreateProject inserts p and fills in its id and timestamps.
func (s *MongoStore) CreateProject(ctx context.Context, p *models.Project) error {
	now := s.now()
	doc := projectDoc{
		ID:          primitive.NewObjectID(),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		VideoID:     p.VideoID,
		URL:         p.URL,
		GitHub:      p.GitHub,
		Likes:       []string{},
		Comments:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return mapMongoErr("mongo insert project", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// UpdateProject sets the non-empty fields of in.
func (s *MongoStore) UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	set := bson.M{"updatedAt": s.now()}
	for field, v := range map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"url":         in.URL,
		"github":      in.GitHub,
		"videoId":     in.VideoID,
	} {
		if v != "" {
			set[field] = v
		}
	}
	res, err := s.projects.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return models.UpdateResult{}, mapMongoErr("mongo update project", err)
	}
	return updateResult(res), nil
}

// DeleteProject removes the project and its comments and returns the
// removed project so its image can be destroyed.
func (s *MongoStore) DeleteProject(ctx context.Context, id string) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc projectDoc
	if err := s.projects.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoErr("mongo delete project", err)
	}
	if _, err := s.comments.DeleteMany(ctx, bson.M{"projectId": id}); err != nil {
		return nil, mapMongoErr("mongo delete project comments", err)
	}
	return doc.model(), nil
}

// AddProjectLike adds userID to the project's likes in one atomic update.
func (s *MongoStore) AddProjectLike(ctx context.Context, projectID, userID string) (models.UpdateResult, error) {
	return s.updateSet(ctx, s.projects.Name(), projectID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveProjectLike pulls userID from the project's likes in one atomic update.
func (s *MongoStore) RemoveProjectLike(ctx context.Context, projectID, userID string) (models.UpdateResult, error) {
	return s.updateSet(ctx, s.projects.Name(), projectID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (s *MongoStore) updateSet(ctx context.Context, collection, id string, update bson.M) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	col := s.projects
	if collection == s.comments.Name() {
		col = s.comments
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return models.UpdateResult{}, mapMongoErr("mongo update "+collection, err)
	}
	if res.MatchedCount == 0 {
		return models.UpdateResult{}, ErrNotFound
	}
	return updateResult(res), nil
}
