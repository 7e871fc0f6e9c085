package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-hub/course-registry/internal/domain/user"
)

type userDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Password      string             `bson:"password"`
	Active        bool               `bson:"active"`
	Role          string             `bson:"role"`
	CPF           string             `bson:"cpf"`
	Registration  string             `bson:"registration"`
	FirstSemester user.Semester      `bson:"firstSemester"`
	Course        string             `bson:"course"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (doc userDocument) entity() *user.User {
	return &user.User{
		ID:            doc.ID.Hex(),
		Name:          doc.Name,
		Email:         doc.Email,
		Password:      doc.Password,
		Active:        doc.Active,
		Role:          user.Role(doc.Role),
		CPF:           doc.CPF,
		Registration:  doc.Registration,
		FirstSemester: doc.FirstSemester,
		Course:        doc.Course,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}
}

// UserRepository implements user.Repository on a collection.
type UserRepository struct {
	coll collection
}

// NewUserRepository creates a repository over the users collection.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{coll: conn.Collection(UserCollection)}
}

// List returns every user in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	out := make([]*user.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.entity())
	}
	return out, nil
}

// FindByID returns user.ErrNotFound for unknown or malformed ids.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByLogin matches the lower-cased email or the registration.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(strings.TrimSpace(login))},
		bson.M{"registration": login},
	}})
}

// Insert stores u under a new ObjectID.
func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	oid := primitive.NewObjectID()
	doc := userDocument{
		ID:            oid,
		Name:          u.Name,
		Email:         u.Email,
		Password:      u.Password,
		Active:        u.Active,
		Role:          string(u.Role),
		CPF:           u.CPF,
		Registration:  u.Registration,
		FirstSemester: u.FirstSemester,
		Course:        u.Course,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = oid.Hex()
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter interface{}) (*user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.entity(), nil
}
