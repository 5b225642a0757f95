package repositories

import (
	"context"
	"time"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	productCollection  = "products"
	brandCollection    = "brands"
	categoryCollection = "categories"
)

type productDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Summary       string             `bson:"summary,omitempty"`
	Price         float64            `bson:"price"`
	Brand         primitive.ObjectID `bson:"brand"`
	Category      primitive.ObjectID `bson:"category"`
	StockQuantity int                `bson:"stockQuantity"`
	CoverImage    string             `bson:"coverImage"`
	IsDeleted     bool               `bson:"isDeleted"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`

	// Filled by the $lookup stages, never written.
	BrandDocs    []namedDocument `bson:"brandDocs,omitempty"`
	CategoryDocs []namedDocument `bson:"categoryDocs,omitempty"`
}

func (d productDocument) toModel() models.Product {
	p := models.Product{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Summary:       d.Summary,
		Price:         d.Price,
		BrandID:       d.Brand.Hex(),
		CategoryID:    d.Category.Hex(),
		StockQuantity: d.StockQuantity,
		CoverImage:    d.CoverImage,
		IsDeleted:     d.IsDeleted,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if len(d.BrandDocs) > 0 {
		p.Brand = &models.Brand{ID: d.BrandDocs[0].ID.Hex(), Name: d.BrandDocs[0].Name}
	}
	if len(d.CategoryDocs) > 0 {
		p.Category = &models.Category{ID: d.CategoryDocs[0].ID.Hex(), Name: d.CategoryDocs[0].Name}
	}
	return p
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
// Brand and Category are joined with $lookup.
type MongoProductRepository struct {
	products *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{products: db.Collection(productCollection)}
}

// productFilter translates the query's filters into a $match document.
func productFilter(q models.ProductQuery) (bson.M, error) {
	filter := bson.M{}
	if len(q.Brands) > 0 {
		ids, err := objectIDs("brand", q.Brands)
		if err != nil {
			return nil, err
		}
		filter["brand"] = bson.M{"$in": ids}
	}
	if len(q.Categories) > 0 {
		ids, err := objectIDs("category", q.Categories)
		if err != nil {
			return nil, err
		}
		filter["category"] = bson.M{"$in": ids}
	}
	if q.ActiveOnly {
		filter["isDeleted"] = false
	}
	return filter, nil
}

func objectIDs(field string, hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperrors.Invalid(field, "invalid id "+h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func lookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: brandCollection},
			{Key: "localField", Value: "brand"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "brandDocs"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: categoryCollection},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryDocs"},
		}}},
	}
}

// listPipeline matches, orders and pages before joining so that only the
// returned page is looked up.
func listPipeline(filter bson.M, q models.ProductQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if field, ok := sortField(q); ok {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
			{Key: field.Document, Value: dir},
			{Key: "_id", Value: 1},
		}}})
	}
	if q.Pagination != nil {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64(q.Pagination.Skip())}},
			bson.D{{Key: "$limit", Value: int64(q.Pagination.Limit)}},
		)
	}
	return append(pipeline, lookupStages()...)
}

func (r *MongoProductRepository) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline) ([]models.Product, error) {
	cursor, err := r.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Query(op, err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Query(op, err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// Find counts with the bare filter and pages through an aggregation.
func (r *MongoProductRepository) Find(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	filter, err := productFilter(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Query("count products", err)
	}
	products, err := r.aggregate(ctx, "find products", listPipeline(filter, q))
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID returns the joined product. Malformed ids are reported as not found.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("product", id)
	}
	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}, lookupStages()...)
	products, err := r.aggregate(ctx, "get product by ID "+id, pipeline)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound("product", id)
	}
	return &products[0], nil
}

// Create inserts the product and assigns its ObjectID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	brand, err := primitive.ObjectIDFromHex(product.BrandID)
	if err != nil {
		return apperrors.Invalid("brand", "invalid id "+product.BrandID)
	}
	category, err := primitive.ObjectIDFromHex(product.CategoryID)
	if err != nil {
		return apperrors.Invalid("category", "invalid id "+product.CategoryID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := productDocument{
		ID:            primitive.NewObjectID(),
		Title:         product.Title,
		Summary:       product.Summary,
		Price:         product.Price,
		Brand:         brand,
		Category:      category,
		StockQuantity: product.StockQuantity,
		CoverImage:    product.CoverImage,
		IsDeleted:     product.IsDeleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.products.InsertOne(ctx, doc); err != nil {
		return apperrors.Query("create product", err)
	}
	product.ID = doc.ID.Hex()
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

// productSet builds the $set document for a patch.
func productSet(p models.ProductPatch) (bson.M, error) {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Summary != nil {
		set["summary"] = *p.Summary
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.BrandID != nil {
		id, err := primitive.ObjectIDFromHex(*p.BrandID)
		if err != nil {
			return nil, apperrors.Invalid("brand", "invalid id "+*p.BrandID)
		}
		set["brand"] = id
	}
	if p.CategoryID != nil {
		id, err := primitive.ObjectIDFromHex(*p.CategoryID)
		if err != nil {
			return nil, apperrors.Invalid("category", "invalid id "+*p.CategoryID)
		}
		set["category"] = id
	}
	if p.StockQuantity != nil {
		set["stockQuantity"] = *p.StockQuantity
	}
	if p.CoverImage != nil {
		set["coverImage"] = *p.CoverImage
	}
	if p.IsDeleted != nil {
		set["isDeleted"] = *p.IsDeleted
	}
	return set, nil
}

// Update applies the patch with a single-document $set.
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("product", id)
	}
	set, err := productSet(patch)
	if err != nil {
		return nil, err
	}
	res, err := r.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Query("update product", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFound("product", id)
	}
	return r.GetByID(ctx, id)
}
