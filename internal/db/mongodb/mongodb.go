package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aklujeats/aklujeats/internal/models"
)

// MongoDB stores the order tracking log in MongoDB
type MongoDB struct {
	mu       sync.Mutex
	client   *mongo.Client
	database *mongo.Database
	config   *models.Config
}

const collOrderEvents = "order_events"

// New creates a new MongoDB event store instance
func New(config *models.Config) (*MongoDB, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("mongodb database name is required")
	}
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}

	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		err := m.client.Disconnect(ctx)
		m.client = nil
		m.database = nil
		return err
	}
	return nil
}

// Ping checks the database connection, connecting first if needed
func (m *MongoDB) Ping(ctx context.Context) error {
	if err := m.Connect(ctx); err != nil {
		return err
	}
	return m.client.Ping(ctx, nil)
}

// collection returns the events collection, connecting on first use
func (m *MongoDB) collection(ctx context.Context) (*mongo.Collection, error) {
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.database.Collection(collOrderEvents), nil
}

// createIndexes creates the timeline index used by ListOrderEvents
func (m *MongoDB) createIndexes(ctx context.Context) error {
	eventIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "order_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}

	_, err := m.database.Collection(collOrderEvents).Indexes().CreateMany(ctx, eventIndexes)
	if err != nil {
		return fmt.Errorf("failed to create order event indexes: %w", err)
	}

	return nil
}

// AppendOrderEvent records an order tracking event
func (m *MongoDB) AppendOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	coll, err := m.collection(ctx)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert order event: %w", err)
	}
	return nil
}

// ListOrderEvents returns an order's events oldest first
func (m *MongoDB) ListOrderEvents(ctx context.Context, orderID string) ([]*models.OrderEvent, error) {
	coll, err := m.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find order events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*models.OrderEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode order events: %w", err)
	}
	return events, nil
}
