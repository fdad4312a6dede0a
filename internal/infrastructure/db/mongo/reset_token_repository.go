package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

type ResetTokenRepository struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
}

func NewResetTokenRepository(client *mongo.Client, db *mongo.Database) *ResetTokenRepository {
	return &ResetTokenRepository{client: client, db: db, coll: db.Collection(resetsCollection)}
}

type resetTokenDoc struct {
	Token     string    `bson:"_id"`
	AgentID   int64     `bson:"agent_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	Used      bool      `bson:"used"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *domain.ResetToken) error {
	doc := resetTokenDoc{
		Token:     token.Token,
		AgentID:   token.AgentID,
		ExpiresAt: token.ExpiresAt,
		Used:      token.Used,
		CreatedAt: token.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storageErr("create reset token", err)
	}
	return nil
}

// Consume burns the token and applies the new password hash in one
// transaction. The filter only matches an unused, unexpired token, so a
// concurrent consumer loses the race and gets ErrInvalidResetToken; an abort
// rolls back the used flag along with the password write.
func (r *ResetTokenRepository) Consume(ctx context.Context, token, newPasswordHash string) (int64, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return 0, storageErr("start session", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		var doc resetTokenDoc
		err := r.coll.FindOneAndUpdate(sc,
			bson.M{
				"_id":        token,
				"used":       false,
				"expires_at": bson.M{"$gt": time.Now().UTC()},
			},
			bson.M{"$set": bson.M{"used": true}},
		).Decode(&doc)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, domain.ErrInvalidResetToken
			}
			return nil, storageErr("consume reset token", err)
		}

		res, err := r.db.Collection(agentsCollection).UpdateOne(sc,
			bson.M{"_id": doc.AgentID},
			bson.M{"$set": bson.M{"password_hash": newPasswordHash}},
		)
		if err != nil {
			return nil, storageErr("apply new password", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrInvalidResetToken
		}
		return doc.AgentID, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (r *ResetTokenRepository) DeleteByAgent(ctx context.Context, agentID int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"agent_id": agentID}); err != nil {
		return storageErr("delete agent reset tokens", err)
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return 0, storageErr("delete expired reset tokens", err)
	}
	return res.DeletedCount, nil
}
