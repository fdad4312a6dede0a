package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type ActivityRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db, coll: db.Collection(activitiesCollection)}
}

type activityDoc struct {
	ID          int64     `bson:"_id"`
	AgentID     int64     `bson:"agent_id"`
	BusinessID  int64     `bson:"business_id,omitempty"`
	Type        string    `bson:"type"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	Outcome     string    `bson:"outcome,omitempty"`
	Status      string    `bson:"status"`
	Date        string    `bson:"date"`
	DurationMin int       `bson:"duration_min,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`

	AgentName    string `bson:"agent_name,omitempty"`
	BusinessName string `bson:"business_name,omitempty"`
}

func (d activityDoc) toDomain() *domain.Activity {
	return &domain.Activity{
		ID:           d.ID,
		AgentID:      d.AgentID,
		BusinessID:   d.BusinessID,
		Type:         domain.ActivityType(d.Type),
		Title:        d.Title,
		Description:  d.Description,
		Outcome:      d.Outcome,
		Status:       domain.ActivityStatus(d.Status),
		Date:         d.Date,
		DurationMin:  d.DurationMin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		AgentName:    strings.TrimSpace(d.AgentName),
		BusinessName: d.BusinessName,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	id, err := nextID(ctx, r.db, activitiesCollection)
	if err != nil {
		return nil, storageErr("create activity", err)
	}

	now := time.Now().UTC()
	doc := activityDoc{
		ID:          id,
		AgentID:     activity.AgentID,
		BusinessID:  activity.BusinessID,
		Type:        string(activity.Type),
		Title:       activity.Title,
		Description: activity.Description,
		Outcome:     activity.Outcome,
		Status:      string(activity.Status),
		Date:        activity.Date,
		DurationMin: activity.DurationMin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !activity.CreatedAt.IsZero() {
		doc.CreatedAt = activity.CreatedAt
		doc.UpdatedAt = activity.UpdatedAt
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storageErr("insert activity", err)
	}
	return doc.toDomain(), nil
}

func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*domain.Activity, error) {
	var doc activityDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrActivityNotFound
		}
		return nil, storageErr("find activity", err)
	}
	return doc.toDomain(), nil
}

// List always scopes to the visibility set in filter.AgentIDs and joins agent
// and business display names for the listing.
func (r *ActivityRepository) List(ctx context.Context, filter ports.ActivityFilter) ([]domain.Activity, error) {
	if len(filter.AgentIDs) == 0 {
		return nil, nil
	}

	match := bson.M{"agent_id": bson.M{"$in": filter.AgentIDs}}
	if filter.Query != "" {
		re := bson.M{"$regex": filter.Query, "$options": "i"}
		match["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"outcome": re},
		}
	}
	if filter.AgentID != 0 {
		match["agent_id"] = filter.AgentID
	}
	if filter.BusinessID != 0 {
		match["business_id"] = filter.BusinessID
	}
	if filter.Type != "" {
		match["type"] = string(filter.Type)
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}
	if filter.AgentID != 0 {
		found := false
		for _, id := range filter.AgentIDs {
			if id == filter.AgentID {
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         agentsCollection,
			"localField":   "agent_id",
			"foreignField": "_id",
			"as":           "agent",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         businessesCollection,
			"localField":   "business_id",
			"foreignField": "_id",
			"as":           "business",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"agent_name": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$agent.first_name", 0}}, ""}},
				" ",
				bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$agent.last_name", 0}}, ""}},
			}}}},
			"business_name": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{"$business.name", 0}}, "",
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"agent": 0, "business": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("list activities", err)
	}
	defer cursor.Close(ctx)

	var activities []domain.Activity
	for cursor.Next(ctx) {
		var doc activityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode activity", err)
		}
		activities = append(activities, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list activities", err)
	}
	return activities, nil
}

func (r *ActivityRepository) ListByAgent(ctx context.Context, agentID int64) ([]domain.Activity, error) {
	return r.List(ctx, ports.ActivityFilter{AgentIDs: []int64{agentID}})
}

func (r *ActivityRepository) Update(ctx context.Context, id int64, fields map[string]any) (*domain.Activity, error) {
	var doc activityDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrActivityNotFound
		}
		return nil, storageErr("update activity", err)
	}
	return doc.toDomain(), nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storageErr("delete activity", err)
	}
	return nil
}

func (r *ActivityRepository) CountByAgents(ctx context.Context, agentIDs []int64) (int64, error) {
	if len(agentIDs) == 0 {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"agent_id": bson.M{"$in": agentIDs}})
	if err != nil {
		return 0, storageErr("count activities", err)
	}
	return n, nil
}

func (r *ActivityRepository) CountPendingByAgents(ctx context.Context, agentIDs []int64) (int64, error) {
	if len(agentIDs) == 0 {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"agent_id": bson.M{"$in": agentIDs},
		"status":   string(domain.ActivityPending),
	})
	if err != nil {
		return 0, storageErr("count pending activities", err)
	}
	return n, nil
}

func (r *ActivityRepository) CountByTypeForAgents(ctx context.Context, agentIDs []int64) (map[domain.ActivityType]int64, error) {
	out := map[domain.ActivityType]int64{}
	if len(agentIDs) == 0 {
		return out, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"agent_id": bson.M{"$in": agentIDs}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$type", "total": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("activities by type", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var bucket struct {
			ID    string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cursor.Decode(&bucket); err != nil {
			return nil, storageErr("decode activity bucket", err)
		}
		out[domain.ActivityType(bucket.ID)] = bucket.Total
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("activities by type", err)
	}
	return out, nil
}

func (r *ActivityRepository) CountPerAgent(ctx context.Context, agentIDs []int64) ([]ports.AgentActivityCount, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"agent_id": bson.M{"$in": agentIDs}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$agent_id", "total": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         agentsCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "agent",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"agent_name": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$agent.first_name", 0}}, ""}},
				" ",
				bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$agent.last_name", 0}}, ""}},
			}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("activities per agent", err)
	}
	defer cursor.Close(ctx)

	var counts []ports.AgentActivityCount
	for cursor.Next(ctx) {
		var bucket struct {
			AgentName string `bson:"agent_name"`
			Total     int64  `bson:"total"`
		}
		if err := cursor.Decode(&bucket); err != nil {
			return nil, storageErr("decode agent bucket", err)
		}
		counts = append(counts, ports.AgentActivityCount{Agent: bucket.AgentName, Total: bucket.Total})
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("activities per agent", err)
	}
	return counts, nil
}
