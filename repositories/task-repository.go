package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/services"
)

type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(collection *mongo.Collection) *TaskRepository {
	return &TaskRepository{collection: collection}
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	return r.findMany(ctx, bson.M{"projectId": projectID}, opts)
}

func (r *TaskRepository) FindByAssignee(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return r.findMany(ctx, bson.M{"assignedTo": userID}, nil)
}

func (r *TaskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	return r.findMany(ctx, bson.M{}, nil)
}

func (r *TaskRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	filter := bson.M{
		"reminderDate": bson.M{"$gte": from, "$lt": to},
		"reminderSent": false,
	}
	return r.findMany(ctx, filter, nil)
}

func (r *TaskRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Task, error) {
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

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	fields := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Progress != nil {
		fields["progress"] = *patch.Progress
	}
	if patch.DueDate != nil {
		fields["dueDate"] = *patch.DueDate
	}
	if patch.ReminderDate != nil {
		fields["reminderDate"] = *patch.ReminderDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNoResult
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return services.ErrNoResult
	}
	return nil
}

func (r *TaskRepository) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"reminderSent": true}})
	return err
}
