package databases

// go generate: mockery --name ApplicationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admitdesk/admissions-api/models"
)

const applicationName = "applications"

// ApplicationDatabase contains the methods to use with the applications collection
type ApplicationDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.StudentApplication, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.StudentApplication, error)
	InsertOne(context.Context, models.StudentApplication) (interface{}, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.StudentApplication, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	EnsureIndexes(context.Context) error
}

type applicationDatabase struct {
	db DatabaseHelper
}

// NewApplicationDatabase initializes a new instance of application database with the provided db connection
func NewApplicationDatabase(db DatabaseHelper) ApplicationDatabase {
	return &applicationDatabase{
		db: db,
	}
}

func (a *applicationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StudentApplication, error) {
	application := &models.StudentApplication{}
	err := a.db.Collection(applicationName).FindOne(ctx, filter, opts...).Decode(&application)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func (a *applicationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StudentApplication, error) {
	var applications []models.StudentApplication
	cur, err := a.db.Collection(applicationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&applications)
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (a *applicationDatabase) InsertOne(ctx context.Context, application models.StudentApplication) (interface{}, error) {
	return a.db.Collection(applicationName).InsertOne(ctx, application)
}

func (a *applicationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(applicationName).UpdateOne(ctx, filter, update, opts...)
}

func (a *applicationDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.StudentApplication, error) {
	application := &models.StudentApplication{}
	err := a.db.Collection(applicationName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&application)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func (a *applicationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(applicationName).CountDocuments(ctx, filter, opts...)
}

// EnsureIndexes creates the unique email index that arbitrates concurrent
// registrations for the same address
func (a *applicationDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := a.db.Collection(applicationName).CreateOneIndex(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
