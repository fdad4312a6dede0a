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

// openStatuses matches IncidentStatus.Open.
var openStatuses = bson.A{string(domain.IncidentOpen), string(domain.IncidentInProgress)}

type IncidentRepository struct {
	db       *mongo.Database
	coll     *mongo.Collection
	comments *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{
		db:       db,
		coll:     db.Collection(incidentsCollection),
		comments: db.Collection(commentsCollection),
	}
}

type incidentDoc struct {
	ID          int64     `bson:"_id"`
	BusinessID  int64     `bson:"business_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	Priority    string    `bson:"priority"`
	Status      string    `bson:"status"`
	Category    string    `bson:"category,omitempty"`
	AssignedTo  string    `bson:"assigned_to,omitempty"`
	Deadline    string    `bson:"deadline,omitempty"`
	Resolution  string    `bson:"resolution,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`

	BusinessName string `bson:"business_name,omitempty"`
}

func (d incidentDoc) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:           d.ID,
		BusinessID:   d.BusinessID,
		Title:        d.Title,
		Description:  d.Description,
		Priority:     domain.IncidentPriority(d.Priority),
		Status:       domain.IncidentStatus(d.Status),
		Category:     d.Category,
		AssignedTo:   d.AssignedTo,
		Deadline:     d.Deadline,
		Resolution:   d.Resolution,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		BusinessName: d.BusinessName,
	}
}

type commentDoc struct {
	ID         int64     `bson:"_id"`
	IncidentID int64     `bson:"incident_id"`
	Author     string    `bson:"author"`
	Content    string    `bson:"content"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	id, err := nextID(ctx, r.db, incidentsCollection)
	if err != nil {
		return nil, storageErr("create incident", err)
	}

	now := time.Now().UTC()
	doc := incidentDoc{
		ID:          id,
		BusinessID:  incident.BusinessID,
		Title:       incident.Title,
		Description: incident.Description,
		Priority:    string(incident.Priority),
		Status:      string(incident.Status),
		Category:    incident.Category,
		AssignedTo:  incident.AssignedTo,
		Deadline:    incident.Deadline,
		Resolution:  incident.Resolution,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !incident.CreatedAt.IsZero() {
		doc.CreatedAt = incident.CreatedAt
		doc.UpdatedAt = incident.UpdatedAt
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storageErr("insert incident", err)
	}
	return doc.toDomain(), nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id int64) (*domain.Incident, error) {
	var doc incidentDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, storageErr("find incident", err)
	}
	return doc.toDomain(), nil
}

// List joins the owning business name onto each incident.
func (r *IncidentRepository) List(ctx context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	match := bson.M{}
	if filter.Query != "" {
		re := bson.M{"$regex": filter.Query, "$options": "i"}
		match["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"category": re},
		}
	}
	if filter.BusinessID != 0 {
		match["business_id"] = filter.BusinessID
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		match["priority"] = string(filter.Priority)
	}
	if filter.Category != "" {
		match["category"] = filter.Category
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         businessesCollection,
			"localField":   "business_id",
			"foreignField": "_id",
			"as":           "business",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"business_name": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{"$business.name", 0}}, "",
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"business": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("list incidents", err)
	}
	defer cursor.Close(ctx)

	var incidents []domain.Incident
	for cursor.Next(ctx) {
		var doc incidentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode incident", err)
		}
		incidents = append(incidents, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list incidents", err)
	}
	return incidents, nil
}

func (r *IncidentRepository) ListByBusiness(ctx context.Context, businessID int64) ([]domain.Incident, error) {
	return r.List(ctx, ports.IncidentFilter{BusinessID: businessID})
}

func (r *IncidentRepository) Update(ctx context.Context, id int64, fields map[string]any) (*domain.Incident, error) {
	var doc incidentDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, storageErr("update incident", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the incident together with its comment thread.
func (r *IncidentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.comments.DeleteMany(ctx, bson.M{"incident_id": id}); err != nil {
		return storageErr("delete incident comments", err)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storageErr("delete incident", err)
	}
	return nil
}

func (r *IncidentRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "category", bson.M{"category": bson.M{"$gt": ""}})
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func (r *IncidentRepository) ListComments(ctx context.Context, incidentID int64) ([]domain.Comment, error) {
	cursor, err := r.comments.Find(ctx,
		bson.M{"incident_id": incidentID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, storageErr("list comments", err)
	}
	defer cursor.Close(ctx)

	var comments []domain.Comment
	for cursor.Next(ctx) {
		var doc commentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode comment", err)
		}
		comments = append(comments, domain.Comment{
			ID:         doc.ID,
			IncidentID: doc.IncidentID,
			Author:     doc.Author,
			Content:    doc.Content,
			CreatedAt:  doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list comments", err)
	}
	return comments, nil
}

func (r *IncidentRepository) AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	id, err := nextID(ctx, r.db, commentsCollection)
	if err != nil {
		return nil, storageErr("add comment", err)
	}

	createdAt := comment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := commentDoc{
		ID:         id,
		IncidentID: comment.IncidentID,
		Author:     comment.Author,
		Content:    comment.Content,
		CreatedAt:  createdAt,
	}
	if _, err := r.comments.InsertOne(ctx, doc); err != nil {
		return nil, storageErr("insert comment", err)
	}
	return &domain.Comment{
		ID:         doc.ID,
		IncidentID: doc.IncidentID,
		Author:     doc.Author,
		Content:    doc.Content,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (r *IncidentRepository) DeleteComment(ctx context.Context, commentID int64) error {
	if _, err := r.comments.DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		return storageErr("delete comment", err)
	}
	return nil
}

func (r *IncidentRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *IncidentRepository) CountOpen(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"status": bson.M{"$in": openStatuses}})
}

func (r *IncidentRepository) CountOverdue(ctx context.Context, today string) (int64, error) {
	return r.count(ctx, bson.M{
		"status":   bson.M{"$in": openStatuses},
		"deadline": bson.M{"$gt": "", "$lt": today},
	})
}

func (r *IncidentRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storageErr("count incidents", err)
	}
	return n, nil
}

func (r *IncidentRepository) CountOpenByPriority(ctx context.Context) (map[domain.IncidentPriority]int64, error) {
	buckets, err := r.groupCount(ctx, bson.M{"status": bson.M{"$in": openStatuses}}, "$priority")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.IncidentPriority]int64, len(buckets))
	for k, v := range buckets {
		out[domain.IncidentPriority(k)] = v
	}
	return out, nil
}

func (r *IncidentRepository) CountByStatus(ctx context.Context) (map[domain.IncidentStatus]int64, error) {
	buckets, err := r.groupCount(ctx, bson.M{}, "$status")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.IncidentStatus]int64, len(buckets))
	for k, v := range buckets {
		out[domain.IncidentStatus(k)] = v
	}
	return out, nil
}

func (r *IncidentRepository) groupCount(ctx context.Context, match bson.M, key string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{"_id": key, "total": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("group incidents", err)
	}
	defer cursor.Close(ctx)

	out := map[string]int64{}
	for cursor.Next(ctx) {
		var bucket struct {
			ID    string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cursor.Decode(&bucket); err != nil {
			return nil, storageErr("decode incident bucket", err)
		}
		out[bucket.ID] = bucket.Total
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("group incidents", err)
	}
	return out, nil
}

// CountByMonth returns creation counts bucketed by month, oldest first, with
// empty months filled so charts get a continuous series.
func (r *IncidentRepository) CountByMonth(ctx context.Context, sinceMonths int) ([]ports.MonthCount, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(sinceMonths - 1), 0)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": start}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"total": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("incidents by month", err)
	}
	defer cursor.Close(ctx)

	totals := map[string]int64{}
	for cursor.Next(ctx) {
		var bucket struct {
			ID    string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cursor.Decode(&bucket); err != nil {
			return nil, storageErr("decode month bucket", err)
		}
		totals[bucket.ID] = bucket.Total
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("incidents by month", err)
	}

	months := make([]ports.MonthCount, 0, sinceMonths)
	for i := 0; i < sinceMonths; i++ {
		m := start.AddDate(0, i, 0)
		key := fmt.Sprintf("%04d-%02d", m.Year(), int(m.Month()))
		months = append(months, ports.MonthCount{Month: key, Total: totals[key]})
	}
	return months, nil
}
