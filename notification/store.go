package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a notification id is malformed or unknown.
var ErrNotFound = errors.New("notification not found")

// Notification is a provider-facing message kept in the document store.
// UserID references the relational account id; no cross-store integrity
// is enforced.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	UserID    uint               `bson:"user" json:"user"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// Store is the document-store interface the endpoints talk to.
type Store interface {
	Create(ctx context.Context, content string, userID uint) (*Notification, error)
	ListRecent(ctx context.Context, userID uint, limit int64) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
}

// MongoStore persists notifications in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Create(ctx context.Context, content string, userID uint) (*Notification, error) {
	n := Notification{
		Content:   content,
		UserID:    userID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.coll.InsertOne(ctx, n)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return &n, nil
}

func (s *MongoStore) ListRecent(ctx context.Context, userID uint, limit int64) ([]Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, id string) (*Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Notification
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MemoryStore keeps notifications in process memory. It backs tests and
// deployments without a configured document store.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications []Notification
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context, content string, userID uint) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := Notification{
		ID:        primitive.NewObjectID(),
		Content:   content,
		UserID:    userID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications = append(s.notifications, n)
	return &n, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, userID uint, limit int64) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			matched = append(matched, n)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id string) (*Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == oid {
			s.notifications[i].Read = true
			n := s.notifications[i]
			return &n, nil
		}
	}
	return nil, ErrNotFound
}
