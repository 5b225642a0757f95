package repositories

import (
	"context"
	"errors"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namedDocument is the stored shape of both brands and categories.
type namedDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type namedCollection struct {
	coll     *mongo.Collection
	resource string
}

func (c namedCollection) all(ctx context.Context) ([]namedDocument, error) {
	cursor, err := c.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apperrors.Query("get all "+c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []namedDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Query("get all "+c.coll.Name(), err)
	}
	return docs, nil
}

func (c namedCollection) byID(ctx context.Context, id string) (*namedDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound(c.resource, id)
	}
	var doc namedDocument
	if err := c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(c.resource, id)
		}
		return nil, apperrors.Query("get "+c.resource+" by ID "+id, err)
	}
	return &doc, nil
}

func (c namedCollection) insert(ctx context.Context, name string) (string, error) {
	doc := namedDocument{ID: primitive.NewObjectID(), Name: name}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return "", apperrors.Query("create "+c.resource, err)
	}
	return doc.ID.Hex(), nil
}

// MongoBrandRepository is a MongoDB implementation of BrandRepository.
type MongoBrandRepository struct {
	named namedCollection
}

// NewMongoBrandRepository creates a new instance of MongoBrandRepository.
func NewMongoBrandRepository(db *mongo.Database) *MongoBrandRepository {
	return &MongoBrandRepository{named: namedCollection{coll: db.Collection(brandCollection), resource: "brand"}}
}

// GetAll returns every brand ordered by name.
func (r *MongoBrandRepository) GetAll(ctx context.Context) ([]models.Brand, error) {
	docs, err := r.named.all(ctx)
	if err != nil {
		return nil, err
	}
	brands := make([]models.Brand, 0, len(docs))
	for _, d := range docs {
		brands = append(brands, models.Brand{ID: d.ID.Hex(), Name: d.Name})
	}
	return brands, nil
}

// GetByID returns a brand by its ID.
func (r *MongoBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	doc, err := r.named.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Brand{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

// Create inserts a new brand and sets its ID.
func (r *MongoBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	id, err := r.named.insert(ctx, brand.Name)
	if err != nil {
		return err
	}
	brand.ID = id
	return nil
}

// MongoCategoryRepository is a MongoDB implementation of CategoryRepository.
type MongoCategoryRepository struct {
	named namedCollection
}

// NewMongoCategoryRepository creates a new instance of MongoCategoryRepository.
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{named: namedCollection{coll: db.Collection(categoryCollection), resource: "category"}}
}

// GetAll returns every category ordered by name.
func (r *MongoCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	docs, err := r.named.all(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, models.Category{ID: d.ID.Hex(), Name: d.Name})
	}
	return categories, nil
}

// GetByID returns a category by its ID.
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	doc, err := r.named.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

// Create inserts a new category and sets its ID.
func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	id, err := r.named.insert(ctx, category.Name)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}
