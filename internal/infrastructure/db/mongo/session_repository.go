package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection)}
}

// sessionDoc keys the session by its token so lookup, replace and delete are
// all single-document operations on _id.
type sessionDoc struct {
	Token     string    `bson:"_id"`
	AgentID   int64     `bson:"agent_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		Token:     session.Token,
		AgentID:   session.AgentID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storageErr("create session", err)
	}
	return nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	var doc sessionDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNoSession
		}
		return nil, storageErr("find session", err)
	}
	return &domain.Session{
		Token:     doc.Token,
		AgentID:   doc.AgentID,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return storageErr("delete session", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByAgent(ctx context.Context, agentID int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"agent_id": agentID}); err != nil {
		return storageErr("delete agent sessions", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return 0, storageErr("delete expired sessions", err)
	}
	return res.DeletedCount, nil
}
