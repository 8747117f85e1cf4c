package devserver

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database states reported by /health.
const (
	dbSkipped     = "skipped"
	dbConnected   = "connected"
	dbUnreachable = "unreachable"
	dbUnchecked   = "unchecked"
)

const defaultServerSelectionTimeout = 5 * time.Second

// connectDatabase connects to the MongoDB deployment named by MONGO_URI and
// keeps the client for the lifetime of the server. It never fails the server.
func (s *Server) connectDatabase(ctx context.Context) string {
	if s.env.MongoURI == "" {
		s.log.Warn("MONGO_URI is missing in your .env file.")
		s.log.Warn("Skipping database connection...")
		s.log.Warn("Add MONGO_URI=your_connection_string in .env")
		return dbSkipped
	}

	client, err := connectMongo(ctx, s.env.MongoURI, s.dbTimeout)
	if err != nil {
		s.log.WithError(err).Error("MongoDB connection error")
		s.log.Warn("Server is running without DB connection.")
		return dbUnreachable
	}

	s.mu.Lock()
	s.mongo = client
	s.mu.Unlock()
	s.log.Info("MongoDB connected")
	return dbConnected
}

// closeDatabase disconnects the client opened by connectDatabase, if any.
func (s *Server) closeDatabase(ctx context.Context) error {
	s.mu.Lock()
	client := s.mongo
	s.mongo = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// connectMongo opens a client and pings the primary, both bounded by the
// server selection timeout.
func connectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
