package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// Mongo wraps the driver client, the application database handle, and the
// transaction capability decided at startup.
type Mongo struct {
	client    *mongo.Client
	db        *mongo.Database
	logger    *zap.Logger
	txCapable bool
}

// New connects to MongoDB from a connection URL and pings it before
// returning. Pool sizing mirrors what we ran with Postgres: enough
// headroom for bursty API traffic without exhausting server connections.
func New(ctx context.Context, mongoURL, dbName string, logger *zap.Logger) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(50).
		SetMinPoolSize(5)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
	m.txCapable = m.probeTransactions(ctx)

	logger.Info("mongo connection established",
		zap.String("db", dbName),
		zap.Bool("transactions", m.txCapable),
	)
	return m, nil
}

// probeTransactions asks the server whether multi-document transactions
// are available. They require a replica set or a mongos; a standalone
// mongod rejects startTransaction. The `hello` response carries setName
// for replica set members and msg=isdbgrid for mongos. Probing once at
// startup selects the write strategy for the whole process (the message
// writer still downgrades per-request if a transaction fails later).
func (m *Mongo) probeTransactions(ctx context.Context) bool {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := m.client.Database("admin").
		RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).
		Decode(&hello)
	if err != nil {
		m.logger.Warn("transaction capability probe failed, assuming none", zap.Error(err))
		return false
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

// SupportsTransactions reports the capability decided at startup.
func (m *Mongo) SupportsTransactions() bool {
	return m.txCapable
}

// WithTransaction runs fn inside a session transaction. Operations inside
// fn must use the context it receives, which carries the session.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *Mongo) Database() *mongo.Database {
	return m.db
}

func (m *Mongo) Health(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) {
	m.logger.Info("closing mongo connection")
	if err := m.client.Disconnect(ctx); err != nil {
		m.logger.Warn("mongo disconnect", zap.Error(err))
	}
}

// EnsureIndexes creates the indexes the application depends on. The
// unique email index is what makes the employee→user upsert safe under
// concurrency; the rest are query-shape indexes.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := m.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	conversations := []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	}
	if _, err := m.Collection("conversations").Indexes().CreateMany(ctx, conversations); err != nil {
		return fmt.Errorf("conversations indexes: %w", err)
	}

	messages := []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := m.Collection("messages").Indexes().CreateMany(ctx, messages); err != nil {
		return fmt.Errorf("messages indexes: %w", err)
	}

	attendance := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "date", Value: -1}}},
	}
	if _, err := m.Collection("attendance").Indexes().CreateMany(ctx, attendance); err != nil {
		return fmt.Errorf("attendance indexes: %w", err)
	}

	leaves := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := m.Collection("leaves").Indexes().CreateMany(ctx, leaves); err != nil {
		return fmt.Errorf("leaves indexes: %w", err)
	}

	// Label catalog names are unique per catalog.
	labelName := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	for _, coll := range []string{"ticketLabels", "taskLabels", "noteCategories"} {
		if _, err := m.Collection(coll).Indexes().CreateMany(ctx, labelName); err != nil {
			return fmt.Errorf("%s indexes: %w", coll, err)
		}
	}

	return nil
}
