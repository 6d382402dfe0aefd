package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

const collectionTemplates = "email_templates"

type TemplateRepository struct {
	col *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{col: db.Collection(collectionTemplates)}
}

type templateDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Subject     string             `bson:"subject"`
	Content     string             `bson:"content"`
	ContentType string             `bson:"content_type"`
	Category    string             `bson:"category"`
	IsActive    bool               `bson:"is_active"`
	IsDefault   bool               `bson:"is_default"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d templateDoc) toDomain() *domain.TemplateDocument {
	return &domain.TemplateDocument{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Subject:     d.Subject,
		Content:     d.Content,
		ContentType: domain.TemplateContentType(d.ContentType),
		Category:    domain.TemplateCategory(d.Category),
		IsActive:    d.IsActive,
		IsDefault:   d.IsDefault,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Create inserts a new template document. The default flag is always stored
// cleared: promotion goes through SetDefault.
func (r *TemplateRepository) Create(ctx context.Context, t *domain.TemplateDocument) (*domain.TemplateDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := templateDoc{
		Name:        t.Name,
		Description: t.Description,
		Subject:     t.Subject,
		Content:     t.Content,
		ContentType: string(t.ContentType),
		Category:    string(t.Category),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *t
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.IsDefault = false
	return &created, nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *domain.TemplateDocument) (*domain.TemplateDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return nil, domain.ErrTemplateNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":         t.Name,
		"description":  t.Description,
		"subject":      t.Subject,
		"content":      t.Content,
		"content_type": string(t.ContentType),
		"category":     string(t.Category),
		"is_active":    t.IsActive,
		"updated_at":   t.UpdatedAt,
	}}

	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTemplateNotFound
	}
	return r.FindByID(ctx, t.ID)
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTemplateNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*domain.TemplateDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTemplateNotFound
	}

	var doc templateDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TemplateRepository) List(ctx context.Context, filter ports.ListTemplatesFilter) ([]*domain.TemplateDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.OnlyActive {
		query["is_active"] = true
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.TemplateDocument
	for cursor.Next(ctx) {
		var doc templateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}

// FindDefault returns the active default template for the category.
func (r *TemplateRepository) FindDefault(ctx context.Context, category domain.TemplateCategory) (*domain.TemplateDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"category": string(category), "is_default": true, "is_active": true}

	var doc templateDoc
	if err := r.col.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoDefaultTemplate
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// SetDefault promotes the template to its category's default. The previous
// default is cleared first so at most one default per category exists.
func (r *TemplateRepository) SetDefault(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTemplateNotFound
	}

	var doc templateDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrTemplateNotFound
		}
		return err
	}

	if _, err := r.col.UpdateMany(ctx,
		bson.M{"category": doc.Category, "_id": bson.M{"$ne": oid}},
		bson.M{"$set": bson.M{"is_default": false}},
	); err != nil {
		return err
	}

	_, err = r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"is_default": true}})
	return err
}

// EnsureIndexes creates necessary indexes on the templates collection.
func (r *TemplateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_default", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
