package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 8 * time.Second
	selectTimeout  = 4 * time.Second

	// Cart documents are small and write-heavy; a modest pool with warm
	// idle connections covers the storefront's burst pattern.
	maxPoolSize = 64
	minPoolSize = 4
)

// ConnectMongoDB dials the cart store and verifies the connection with a
// primary ping before handing the database back.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(selectTimeout).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to cart store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, selectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping cart store: %w", err)
	}

	return client.Database(database), nil
}
