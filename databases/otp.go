package databases

// go generate: mockery --name OtpDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/admitdesk/admissions-api/models"
)

const otpName = "loginOtps"

// OtpDatabase contains the methods to use with the loginOtps collection
type OtpDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.LoginOtp, error)
	ReplaceOne(context.Context, interface{}, models.LoginOtp, ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	FindOneAndDelete(context.Context, interface{}, ...*options.FindOneAndDeleteOptions) (*models.LoginOtp, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	EnsureIndexes(context.Context) error
}

type otpDatabase struct {
	db DatabaseHelper
}

// NewOtpDatabase initializes a new instance of otp database with the provided db connection
func NewOtpDatabase(db DatabaseHelper) OtpDatabase {
	return &otpDatabase{
		db: db,
	}
}

func (o *otpDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.LoginOtp, error) {
	otp := &models.LoginOtp{}
	err := o.db.Collection(otpName).FindOne(ctx, filter, opts...).Decode(&otp)
	if err != nil {
		return nil, err
	}
	return otp, nil
}

func (o *otpDatabase) ReplaceOne(ctx context.Context, filter interface{}, otp models.LoginOtp, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return o.db.Collection(otpName).ReplaceOne(ctx, filter, otp, opts...)
}

func (o *otpDatabase) FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) (*models.LoginOtp, error) {
	otp := &models.LoginOtp{}
	err := o.db.Collection(otpName).FindOneAndDelete(ctx, filter, opts...).Decode(&otp)
	if err != nil {
		return nil, err
	}
	return otp, nil
}

func (o *otpDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return o.db.Collection(otpName).DeleteOne(ctx, filter, opts...)
}

func (o *otpDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return o.db.Collection(otpName).DeleteMany(ctx, filter, opts...)
}

// EnsureIndexes creates the unique email index so concurrent otp requests for
// the same address collapse to a single live code
func (o *otpDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := o.db.Collection(otpName).CreateOneIndex(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
