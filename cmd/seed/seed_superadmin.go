package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/models"
	"chatbot-admin-console/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	usersCollection := client.Database(cfg.DBName).Collection("users")

	username := os.Getenv("SUPERADMIN_USERNAME")
	if username == "" {
		username = "superadmin"
	}

	var existing models.User
	err = usersCollection.FindOne(context.Background(), bson.M{"username": username, "role": "superadmin"}).Decode(&existing)
	if err == nil {
		fmt.Println("SuperAdmin user already exists!")
		fmt.Printf("   Username: %s\n", existing.Username)
		fmt.Printf("   Email: %s\n", existing.Email)
		os.Exit(0)
	}

	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		password = "SuperAdmin123!"
		fmt.Println("WARNING: Using default password. Set SUPERADMIN_PASSWORD environment variable!")
	}

	email := os.Getenv("SUPERADMIN_EMAIL")
	if email == "" {
		email = "superadmin@example.com"
	}

	hashedPassword, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Name:         "Super Administrator",
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         "superadmin",
		WorkspaceID:  nil,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	result, err := usersCollection.InsertOne(context.Background(), user)
	if err != nil {
		log.Fatalf("Failed to create superadmin user: %v", err)
	}

	fmt.Printf("SuperAdmin user created successfully!\n")
	fmt.Printf("   Username: %s\n", username)
	fmt.Printf("   Email: %s\n", email)
	fmt.Printf("   User ID: %s\n", result.InsertedID.(primitive.ObjectID).Hex())
	fmt.Printf("\nIMPORTANT: Change the password after first login!\n")
}
