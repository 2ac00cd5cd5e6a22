package databases

// go generate: mockery --name StaffDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admitdesk/admissions-api/models"
)

const staffName = "staffApplications"

// StaffDatabase contains the methods to use with the staffApplications collection
type StaffDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.StaffApplication, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.StaffApplication, error)
	InsertOne(context.Context, models.StaffApplication) (interface{}, error)
	EnsureIndexes(context.Context) error
}

type staffDatabase struct {
	db DatabaseHelper
}

// NewStaffDatabase initializes a new instance of staff database with the provided db connection
func NewStaffDatabase(db DatabaseHelper) StaffDatabase {
	return &staffDatabase{
		db: db,
	}
}

func (s *staffDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StaffApplication, error) {
	application := &models.StaffApplication{}
	err := s.db.Collection(staffName).FindOne(ctx, filter, opts...).Decode(&application)
	if err != nil {
		return nil, err
	}
	return application, nil
}

func (s *staffDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StaffApplication, error) {
	var applications []models.StaffApplication
	cur, err := s.db.Collection(staffName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&applications)
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (s *staffDatabase) InsertOne(ctx context.Context, application models.StaffApplication) (interface{}, error) {
	return s.db.Collection(staffName).InsertOne(ctx, application)
}

// EnsureIndexes creates the unique email index for staff registrations
func (s *staffDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(staffName).CreateOneIndex(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
