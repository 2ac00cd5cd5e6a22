package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the first admissions admin.
// Usage: DB_URI=... DB_NAME=... go run scripts/create_admin.go <email> <password>
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/create_admin.go <email> <password>")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(os.Getenv("DB_URI")))
	if err != nil {
		fmt.Printf("Error connecting to mongo: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	admins := client.Database(os.Getenv("DB_NAME")).Collection("admins")

	now := time.Now().UTC()
	_, err = admins.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         bson.M{"passwordHash": string(hashed), "active": true, "updatedAt": now},
			"$setOnInsert": bson.M{"email": email, "createdAt": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		fmt.Printf("Error upserting admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin %s is ready\n", email)
}
