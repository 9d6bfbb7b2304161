package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
}

// InitDB initializes and returns the database connections
func InitDB(cfg *Config) (*DB, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	sqlDB, err := OpenSQL(cfg)
	if err != nil {
		return nil, err
	}

	mongoClient, err := initMongo(cfg.MongoURI)
	if err != nil {
		closeSQL(sqlDB)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &DB{
		SQL:   sqlDB,
		Mongo: mongoClient,
	}, nil
}

// OpenSQL opens the relational store selected by DB_DRIVER
func OpenSQL(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		dialector = postgres.Open(cfg.PostgresConnStr)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := openGorm(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}
	log.Printf("Successfully connected to %s!", cfg.DBDriver)
	return db, nil
}

// openGorm opens and pings a GORM connection. Driver errors are translated so
// unique-index violations surface as gorm.ErrDuplicatedKey.
func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to MongoDB!")
	return client, nil
}

func closeSQL(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting SQL DB from GORM: %v\n", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing SQL connection: %v\n", err)
		return
	}
	log.Println("SQL connection closed.")
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		closeSQL(db.SQL)
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Printf("Error closing MongoDB connection: %v\n", err)
		} else {
			log.Println("MongoDB connection closed.")
		}
	}
}
