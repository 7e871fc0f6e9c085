package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-hub/course-registry/internal/domain/discipline"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/pkg/retry"
)

// emptyCollection finds nothing and deletes nothing. Other calls panic on the
// nil embedded interface.
type emptyCollection struct {
	collection
	filters []interface{}
}

func (c *emptyCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	c.filters = append(c.filters, filter)
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *emptyCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	c.filters = append(c.filters, filter)
	return &mongo.DeleteResult{DeletedCount: 0}, nil
}

func TestObjectID(t *testing.T) {
	oid, ok := objectID("600566dca73e1f2b2cd112f3")
	assert.True(t, ok)
	assert.Equal(t, "600566dca73e1f2b2cd112f3", oid.Hex())

	for _, bad := range []string{"", "not-an-id", "3f2b8c1e-9f64-4d1e-a0a5-1b2f7c9e4d10"} {
		_, ok := objectID(bad)
		assert.False(t, ok, bad)
	}
}

func TestDisciplineDocument_StoresScheduleFieldNames(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &discipline.Discipline{
		Name:       "Algorithms",
		Professor:  "Ada",
		Difficulty: 3,
		Schedule:   discipline.Schedule{{StartHourInMinutes: 100, EndHourInMinutes: 200, Day: 2}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	oid := primitive.NewObjectID()

	raw, err := bson.Marshal(toDisciplineDocument(d, oid))
	require.NoError(t, err)

	var stored struct {
		Schedule []struct {
			Start int `bson:"startHourInMinutes"`
			End   int `bson:"endHourInMinutes"`
			Day   int `bson:"day"`
		} `bson:"schedule"`
	}
	require.NoError(t, bson.Unmarshal(raw, &stored))
	require.Len(t, stored.Schedule, 1)
	assert.Equal(t, 100, stored.Schedule[0].Start)
	assert.Equal(t, 200, stored.Schedule[0].End)
	assert.Equal(t, 2, stored.Schedule[0].Day)

	var doc disciplineDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.entity()
	assert.Equal(t, oid.Hex(), got.ID)
	assert.Equal(t, d.Schedule, got.Schedule)
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestDisciplineRepository_UnassignedIDIsNotFound(t *testing.T) {
	coll := &emptyCollection{}
	repo := &DisciplineRepository{coll: coll}

	_, err := repo.FindByID(context.Background(), "600566dca73e1f2b2cd112f3")
	assert.ErrorIs(t, err, discipline.ErrNotFound)
	require.Len(t, coll.filters, 1)

	err = repo.Delete(context.Background(), "600566dca73e1f2b2cd112f3")
	assert.ErrorIs(t, err, discipline.ErrNotFound)
}

func TestDisciplineRepository_MalformedIDSkipsQuery(t *testing.T) {
	coll := &emptyCollection{}
	repo := &DisciplineRepository{coll: coll}

	_, err := repo.FindByID(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, discipline.ErrNotFound)
	assert.Empty(t, coll.filters)
}

func TestUserRepository_NoDocumentsIsNotFound(t *testing.T) {
	repo := &UserRepository{coll: &emptyCollection{}}

	_, err := repo.FindByLogin(context.Background(), "nobody@campus.example")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestNewConnection_BadSettingsArePermanent(t *testing.T) {
	ctx := context.Background()

	_, err := NewConnection(ctx, Config{URI: "localhost:27017", Database: "registry"})
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))

	_, err = NewConnection(ctx, Config{URI: "mongodb://localhost:27017"})
	require.Error(t, err)
	assert.True(t, retry.IsPermanent(err))
}
