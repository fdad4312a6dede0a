package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// storageErr wraps a backend fault so callers can tell it apart from
// not-found and map it to a 5xx.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}

type AgentRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewAgentRepository(db *mongo.Database) *AgentRepository {
	return &AgentRepository{db: db, coll: db.Collection(agentsCollection)}
}

type agentDoc struct {
	ID           int64     `bson:"_id"`
	Username     string    `bson:"username,omitempty"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name,omitempty"`
	Email        string    `bson:"email,omitempty"`
	Phone        string    `bson:"phone,omitempty"`
	Zone         string    `bson:"zone,omitempty"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	Role         string    `bson:"role"`
	Subgroup     string    `bson:"subgroup,omitempty"`
	Active       bool      `bson:"active"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d agentDoc) toDomain() *domain.Agent {
	return &domain.Agent{
		ID:           d.ID,
		Username:     d.Username,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Phone:        d.Phone,
		Zone:         d.Zone,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Subgroup:     domain.Subgroup(d.Subgroup),
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
	}
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) (*domain.Agent, error) {
	id, err := nextID(ctx, r.db, agentsCollection)
	if err != nil {
		return nil, storageErr("create agent", err)
	}

	createdAt := agent.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := agentDoc{
		ID:           id,
		Username:     agent.Username,
		FirstName:    agent.FirstName,
		LastName:     agent.LastName,
		Email:        agent.Email,
		Phone:        agent.Phone,
		Zone:         agent.Zone,
		PasswordHash: agent.PasswordHash,
		Role:         string(agent.Role),
		Subgroup:     string(agent.Subgroup),
		Active:       agent.Active,
		CreatedAt:    createdAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, storageErr("insert agent", err)
	}
	return doc.toDomain(), nil
}

func (r *AgentRepository) FindByID(ctx context.Context, id int64) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AgentRepository) FindByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AgentRepository) FindByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AgentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Agent, error) {
	var doc agentDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAgentNotFound
		}
		return nil, storageErr("find agent", err)
	}
	return doc.toDomain(), nil
}

func (r *AgentRepository) List(ctx context.Context, filter ports.AgentFilter) ([]domain.Agent, error) {
	query := bson.M{}
	if filter.Query != "" {
		re := bson.M{"$regex": filter.Query, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
			bson.M{"zone": re},
		}
	}
	if filter.Zone != "" {
		query["zone"] = filter.Zone
	}
	if filter.Active != nil {
		query["active"] = *filter.Active
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}}))
	if err != nil {
		return nil, storageErr("list agents", err)
	}
	defer cursor.Close(ctx)

	var agents []domain.Agent
	for cursor.Next(ctx) {
		var doc agentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode agent", err)
		}
		agents = append(agents, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list agents", err)
	}
	return agents, nil
}

func (r *AgentRepository) Update(ctx context.Context, id int64, fields map[string]any) (*domain.Agent, error) {
	var doc agentDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAgentNotFound
		}
		return nil, storageErr("update agent", err)
	}
	return doc.toDomain(), nil
}

func (r *AgentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password_hash": passwordHash}})
	if err != nil {
		return storageErr("update password", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

func (r *AgentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storageErr("delete agent", err)
	}
	return nil
}

func (r *AgentRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, bson.M{})
}

func (r *AgentRepository) ListIDsBySubgroup(ctx context.Context, subgroup domain.Subgroup) ([]int64, error) {
	return r.listIDs(ctx, bson.M{"subgroup": string(subgroup)})
}

func (r *AgentRepository) listIDs(ctx context.Context, filter bson.M) ([]int64, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, storageErr("list agent ids", err)
	}
	defer cursor.Close(ctx)

	var ids []int64
	for cursor.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode agent id", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list agent ids", err)
	}
	return ids, nil
}

func (r *AgentRepository) CountActiveIn(ctx context.Context, ids []int64) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}, "active": true})
	if err != nil {
		return 0, storageErr("count agents", err)
	}
	return n, nil
}

func (r *AgentRepository) Zones(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "zone", bson.M{"zone": bson.M{"$gt": ""}})
	if err != nil {
		return nil, storageErr("list zones", err)
	}
	zones := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			zones = append(zones, s)
		}
	}
	return zones, nil
}
