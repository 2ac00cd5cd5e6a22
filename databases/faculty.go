package databases

// go generate: mockery --name FacultyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admitdesk/admissions-api/models"
)

const facultyName = "facultyApplications"

// FacultyDatabase contains the methods to use with the facultyApplications collection
type FacultyDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.FacultyApplication, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.FacultyApplication, error)
	InsertOne(context.Context, models.FacultyApplication) (interface{}, error)
	EnsureIndexes(context.Context) error
}

type facultyDatabase struct {
	db DatabaseHelper
}

// NewFacultyDatabase initializes a new instance of faculty database with the provided db connection
func NewFacultyDatabase(db DatabaseHelper) FacultyDatabase {
	return &facultyDatabase{
		db: db,
	}
}

func (f *facultyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.FacultyApplication, error) {
	application := &models.FacultyApplication{}
	err := f.db.Collection(facultyName).FindOne(ctx, filter, opts...).Decode(&application)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func (f *facultyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.FacultyApplication, error) {
	var applications []models.FacultyApplication
	cur, err := f.db.Collection(facultyName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&applications)
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (f *facultyDatabase) InsertOne(ctx context.Context, application models.FacultyApplication) (interface{}, error) {
	return f.db.Collection(facultyName).InsertOne(ctx, application)
}

// EnsureIndexes creates the unique email index for faculty registrations
func (f *facultyDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := f.db.Collection(facultyName).CreateOneIndex(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
