package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/services"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{collection: collection}
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *UserRepository) FindAvailableSupervisors(ctx context.Context) ([]models.User, error) {
	return r.findMany(ctx, bson.M{
		"userType": models.UserTypeSupervisor,
		"status":   models.SupervisorAvailable,
	})
}

func (r *UserRepository) findMany(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return services.ErrNoResult
	}
	return nil
}

// ReserveSupervisorSlot bumps currentProjects only while the supervisor is
// still available, so concurrent project creations cannot race past the
// capacity check.
func (r *UserRepository) ReserveSupervisorSlot(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	filter := bson.M{
		"_id":      id,
		"userType": models.UserTypeSupervisor,
		"status":   models.SupervisorAvailable,
	}
	update := bson.M{"$inc": bson.M{"currentProjects": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &user, nil
}

// ReleaseSupervisorSlot backs out a reservation when the project insert
// failed. The decrement only matches a positive count so a double release
// cannot go negative.
func (r *UserRepository) ReleaseSupervisorSlot(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "currentProjects": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"currentProjects": -1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return services.ErrNoResult
		}
		return err
	}

	if user.Status == models.SupervisorFull && !user.StatusOverride && user.CurrentProjects < user.MaxProjects {
		statusUpdate := bson.M{"$set": bson.M{"status": models.SupervisorAvailable}}
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, statusUpdate); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) SetSupervisorStatus(ctx context.Context, id primitive.ObjectID, status models.SupervisorStatus, override bool) error {
	update := bson.M{"$set": bson.M{"status": status, "statusOverride": override}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNoResult
	}
	return nil
}

func (r *UserRepository) SetSupervisorCapacity(ctx context.Context, id primitive.ObjectID, maxProjects int, status models.SupervisorStatus) error {
	update := bson.M{"$set": bson.M{"maxProjects": maxProjects, "status": status}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return services.ErrNoResult
	}
	return nil
}
