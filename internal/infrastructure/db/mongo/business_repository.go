package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type BusinessRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewBusinessRepository(db *mongo.Database) *BusinessRepository {
	return &BusinessRepository{db: db, coll: db.Collection(businessesCollection)}
}

type businessDoc struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	Sector    string    `bson:"sector,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Email     string    `bson:"email,omitempty"`
	Address   string    `bson:"address,omitempty"`
	Notes     string    `bson:"notes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`

	TotalIncidents int64 `bson:"total_incidents,omitempty"`
	OpenIncidents  int64 `bson:"open_incidents,omitempty"`
}

func (d businessDoc) toDomain() *domain.Business {
	return &domain.Business{
		ID:             d.ID,
		Name:           d.Name,
		Sector:         d.Sector,
		Phone:          d.Phone,
		Email:          d.Email,
		Address:        d.Address,
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt,
		TotalIncidents: d.TotalIncidents,
		OpenIncidents:  d.OpenIncidents,
	}
}

func (r *BusinessRepository) Create(ctx context.Context, business *domain.Business) (*domain.Business, error) {
	id, err := nextID(ctx, r.db, businessesCollection)
	if err != nil {
		return nil, storageErr("create business", err)
	}

	createdAt := business.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := businessDoc{
		ID:        id,
		Name:      business.Name,
		Sector:    business.Sector,
		Phone:     business.Phone,
		Email:     business.Email,
		Address:   business.Address,
		Notes:     business.Notes,
		CreatedAt: createdAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, storageErr("insert business", err)
	}
	return doc.toDomain(), nil
}

func (r *BusinessRepository) FindByID(ctx context.Context, id int64) (*domain.Business, error) {
	var doc businessDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, storageErr("find business", err)
	}
	return doc.toDomain(), nil
}

// List joins incident aggregates onto each business with a $lookup so the
// listing carries total and open counts without a second round trip.
func (r *BusinessRepository) List(ctx context.Context, filter ports.BusinessFilter) ([]domain.Business, error) {
	match := bson.M{}
	if filter.Query != "" {
		re := bson.M{"$regex": filter.Query, "$options": "i"}
		match["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"sector": re},
			bson.M{"address": re},
		}
	}
	if filter.Sector != "" {
		match["sector"] = filter.Sector
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         incidentsCollection,
			"localField":   "_id",
			"foreignField": "business_id",
			"as":           "incidents",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"total_incidents": bson.M{"$size": "$incidents"},
			"open_incidents": bson.M{"$size": bson.M{
				"$filter": bson.M{
					"input": "$incidents",
					"as":    "inc",
					"cond":  bson.M{"$in": bson.A{"$$inc.status", bson.A{"open", "in_progress"}}},
				},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"incidents": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageErr("list businesses", err)
	}
	defer cursor.Close(ctx)

	var businesses []domain.Business
	for cursor.Next(ctx) {
		var doc businessDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("decode business", err)
		}
		businesses = append(businesses, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list businesses", err)
	}
	return businesses, nil
}

func (r *BusinessRepository) Update(ctx context.Context, id int64, fields map[string]any) (*domain.Business, error) {
	var doc businessDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, storageErr("update business", err)
	}
	return doc.toDomain(), nil
}

func (r *BusinessRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storageErr("delete business", err)
	}
	return nil
}

func (r *BusinessRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storageErr("count businesses", err)
	}
	return n, nil
}

func (r *BusinessRepository) Sectors(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "sector", bson.M{"sector": bson.M{"$gt": ""}})
	if err != nil {
		return nil, storageErr("list sectors", err)
	}
	sectors := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			sectors = append(sectors, s)
		}
	}
	return sectors, nil
}
