package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/services"
)

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(collection *mongo.Collection) *ProjectRepository {
	return &ProjectRepository{collection: collection}
}

// EnsureTeamCodeIndex creates the unique index that backs team code
// collision detection. Must run before the service accepts traffic.
func EnsureTeamCodeIndex(ctx context.Context, collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"teamCode": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on teamCode: %v", err)
	}
	return nil
}

func (r *ProjectRepository) Insert(ctx context.Context, project *models.Project) error {
	result, err := r.collection.InsertOne(ctx, project)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrDuplicateCode
		}
		return err
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProjectRepository) FindByMember(ctx context.Context, userID primitive.ObjectID) (*models.Project, error) {
	return r.findOne(ctx, bson.M{
		"$or": []bson.M{
			{"leader": userID},
			{"members": userID},
		},
	})
}

func (r *ProjectRepository) FindByTeamCode(ctx context.Context, teamCode string) (*models.Project, error) {
	return r.findOne(ctx, bson.M{"teamCode": teamCode})
}

func (r *ProjectRepository) findOne(ctx context.Context, filter bson.M) (*models.Project, error) {
	var project models.Project
	err := r.collection.FindOne(ctx, filter).Decode(&project)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &project, nil
}

// AppendMember adds the user in one conditional update: the filter only
// matches while slot index MaxTeamSize-1 is still empty, so two concurrent
// joins cannot push the team past four members.
func (r *ProjectRepository) AppendMember(ctx context.Context, teamCode string, userID primitive.ObjectID) (*models.Project, error) {
	filter := bson.M{
		"teamCode": teamCode,
		fmt.Sprintf("members.%d", models.MaxTeamSize-1): bson.M{"$exists": false},
	}
	update := bson.M{
		"$push": bson.M{"members": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var project models.Project
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&project)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProjectStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *ProjectRepository) SetFinalPresentation(ctx context.Context, id primitive.ObjectID, fp models.FinalPresentation) error {
	update := bson.M{"$set": bson.M{"finalPresentation": fp, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNoResult
	}
	return nil
}

func (r *ProjectRepository) FindBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) ([]models.Project, error) {
	return r.findMany(ctx, bson.M{"supervisor": supervisorID}, nil)
}

func (r *ProjectRepository) FindRecentBySupervisor(ctx context.Context, supervisorID primitive.ObjectID, limit int64) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.M{"updatedAt": -1}).SetLimit(limit)
	return r.findMany(ctx, bson.M{"supervisor": supervisorID}, opts)
}

func (r *ProjectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	return r.findMany(ctx, bson.M{}, nil)
}

func (r *ProjectRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Project, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) CountBySupervisor(ctx context.Context, supervisorID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"supervisor": supervisorID})
}

func (r *ProjectRepository) CountPresentationsBetween(ctx context.Context, supervisorID primitive.ObjectID, from time.Time, to *time.Time) (int64, error) {
	dateFilter := bson.M{"$gte": from}
	if to != nil {
		dateFilter["$lte"] = *to
	}
	return r.collection.CountDocuments(ctx, bson.M{
		"supervisor":             supervisorID,
		"finalPresentation.date": dateFilter,
	})
}
