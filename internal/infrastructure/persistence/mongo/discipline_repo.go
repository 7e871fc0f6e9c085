package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-hub/course-registry/internal/domain/discipline"
)

type disciplineDocument struct {
	ID         primitive.ObjectID     `bson:"_id"`
	Name       string                 `bson:"name"`
	Professor  string                 `bson:"professor"`
	Difficulty int                    `bson:"difficulty"`
	Schedule   []discipline.TimeRange `bson:"schedule"`
	CreatedAt  time.Time              `bson:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt"`
}

func toDisciplineDocument(d *discipline.Discipline, id primitive.ObjectID) disciplineDocument {
	return disciplineDocument{
		ID:         id,
		Name:       d.Name,
		Professor:  d.Professor,
		Difficulty: d.Difficulty,
		Schedule:   d.Schedule.Clone(),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (doc disciplineDocument) entity() *discipline.Discipline {
	return &discipline.Discipline{
		ID:         doc.ID.Hex(),
		Name:       doc.Name,
		Professor:  doc.Professor,
		Difficulty: doc.Difficulty,
		Schedule:   discipline.Schedule(doc.Schedule).Clone(),
		CreatedAt:  doc.CreatedAt.UTC(),
		UpdatedAt:  doc.UpdatedAt.UTC(),
	}
}

// DisciplineRepository implements discipline.Repository on a collection.
type DisciplineRepository struct {
	coll collection
}

// NewDisciplineRepository creates a repository over the disciplines collection.
func NewDisciplineRepository(conn *Connection) *DisciplineRepository {
	return &DisciplineRepository{coll: conn.Collection(DisciplineCollection)}
}

// List returns every discipline in insertion order.
func (r *DisciplineRepository) List(ctx context.Context) ([]*discipline.Discipline, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list disciplines: %w", err)
	}

	var docs []disciplineDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode disciplines: %w", err)
	}

	out := make([]*discipline.Discipline, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.entity())
	}
	return out, nil
}

// FindByID returns discipline.ErrNotFound for unknown or malformed ids.
func (r *DisciplineRepository) FindByID(ctx context.Context, id string) (*discipline.Discipline, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, discipline.ErrNotFound
	}

	var doc disciplineDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, discipline.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find discipline: %w", err)
	}
	return doc.entity(), nil
}

// Insert stores d under a new ObjectID.
func (r *DisciplineRepository) Insert(ctx context.Context, d *discipline.Discipline) error {
	oid := primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, toDisciplineDocument(d, oid)); err != nil {
		return fmt.Errorf("failed to insert discipline: %w", err)
	}
	d.ID = oid.Hex()
	return nil
}

// Update replaces the stored document.
func (r *DisciplineRepository) Update(ctx context.Context, d *discipline.Discipline) error {
	oid, ok := objectID(d.ID)
	if !ok {
		return discipline.ErrNotFound
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toDisciplineDocument(d, oid))
	if err != nil {
		return fmt.Errorf("failed to update discipline: %w", err)
	}
	if res.MatchedCount == 0 {
		return discipline.ErrNotFound
	}
	return nil
}

// Delete removes the document.
func (r *DisciplineRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return discipline.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete discipline: %w", err)
	}
	if res.DeletedCount == 0 {
		return discipline.ErrNotFound
	}
	return nil
}
