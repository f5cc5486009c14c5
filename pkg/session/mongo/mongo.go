// Package mongo provides a MongoDB-backed session store. Training scenes are
// kept as JSON text so documents stay readable from the mongo shell; a TTL
// index on expires_at lets the server purge old sessions.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/session"
)

// Defaults for Config.
const (
	DefaultDatabase   = "scenedsl"
	DefaultCollection = "sessions"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

type document struct {
	ID            string     `bson:"_id"`
	Training      string     `bson:"training"`
	PrimaryPrefix string     `bson:"primary_prefix"`
	EditPrefix    string     `bson:"edit_prefix"`
	CreatedAt     time.Time  `bson:"created_at"`
	ExpiresAt     *time.Time `bson:"expires_at,omitempty"`
}

// Store stores sessions in one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB, verifies the connection and ensures the TTL
// index exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db, name := cfg.Database, cfg.Collection
	if db == "" {
		db = DefaultDatabase
	}
	if name == "" {
		name = DefaultCollection
	}
	coll := client.Database(db).Collection(name)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &Store{client: client, coll: coll}, nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	sess, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	// The TTL monitor runs about once a minute.
	if sess.IsExpired() {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"_id": id})
		return nil, session.ErrExpired
	}
	return sess, nil
}

func (s *Store) Set(ctx context.Context, sess *session.Session) error {
	doc, err := toDocument(sess)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": sess.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions the TTL monitor has not reached yet.
func (s *Store) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(sess *session.Session) (document, error) {
	training, err := json.Marshal(sess.Training)
	if err != nil {
		return document{}, fmt.Errorf("marshal training scene: %w", err)
	}
	doc := document{
		ID:            sess.ID,
		Training:      string(training),
		PrimaryPrefix: sess.PrimaryPrefix,
		EditPrefix:    sess.EditPrefix,
		CreatedAt:     sess.CreatedAt,
	}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		doc.ExpiresAt = &exp
	}
	return doc, nil
}

func fromDocument(doc document) (*session.Session, error) {
	var training scene.Scene
	if err := json.Unmarshal([]byte(doc.Training), &training); err != nil {
		return nil, fmt.Errorf("parse training scene: %w", err)
	}
	sess := &session.Session{
		ID:            doc.ID,
		Training:      training,
		PrimaryPrefix: doc.PrimaryPrefix,
		EditPrefix:    doc.EditPrefix,
		CreatedAt:     doc.CreatedAt,
	}
	if doc.ExpiresAt != nil {
		sess.ExpiresAt = *doc.ExpiresAt
	}
	return sess, nil
}

var _ session.Store = (*Store)(nil)
