package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saasportal/admin-api/internal/core/domain"
)

const tenantCollection = "tenants"

// TenantRepository persists the tenant registry in MongoDB.
type TenantRepository struct {
	coll *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{coll: db.Collection(tenantCollection)}
}

// EnsureTenantIndexes creates the unique slug index and the sparse domain
// index used by host-based resolution.
func EnsureTenantIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(tenantCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "domain", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("tenant indexes: %w", err)
	}
	return nil
}

type mongoTenant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Domain      string             `bson:"domain,omitempty"`
	CompanyName string             `bson:"company_name"`

	ContactEmail string `bson:"contact_email"`

	Plan        string    `bson:"plan"`
	PlanEndDate time.Time `bson:"plan_end_date,omitempty"`

	Status       string    `bson:"status"`
	TrialEndDate time.Time `bson:"trial_end_date,omitempty"`

	Limits   domain.Limits   `bson:"limits"`
	Usage    domain.Usage    `bson:"usage"`
	Features map[string]bool `bson:"features,omitempty"`
	Settings domain.Settings `bson:"settings"`

	ProductName string `bson:"product_name,omitempty"`

	OwnerID   string    `bson:"owner_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toMongoTenant(t *domain.Tenant) (mongoTenant, error) {
	doc := mongoTenant{
		Name:         t.Name,
		Slug:         t.Slug,
		Domain:       t.Domain,
		CompanyName:  t.CompanyName,
		ContactEmail: t.ContactEmail,
		Plan:         string(t.Plan),
		PlanEndDate:  t.PlanEndDate,
		Status:       string(t.Status),
		TrialEndDate: t.TrialEndDate,
		Limits:       t.Limits,
		Usage:        t.Usage,
		Features:     t.Features,
		Settings:     t.Settings,
		ProductName:  t.ProductName,
		OwnerID:      t.OwnerID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.ID != "" {
		oid, err := primitive.ObjectIDFromHex(t.ID)
		if err != nil {
			return doc, domain.ErrTenantNotFound
		}
		doc.ID = oid
	}
	return doc, nil
}

func (m mongoTenant) toDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Slug:         m.Slug,
		Domain:       m.Domain,
		CompanyName:  m.CompanyName,
		ContactEmail: m.ContactEmail,
		Plan:         domain.Plan(m.Plan),
		PlanEndDate:  m.PlanEndDate,
		Status:       domain.TenantStatus(m.Status),
		TrialEndDate: m.TrialEndDate,
		Limits:       m.Limits,
		Usage:        m.Usage,
		Features:     m.Features,
		Settings:     m.Settings,
		ProductName:  m.ProductName,
		OwnerID:      m.OwnerID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	doc, err := toMongoTenant(tenant)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTenantExists
		}
		return nil, fmt.Errorf("insert tenant: %w", err)
	}

	created := *tenant
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TenantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tenant, error) {
	var doc mongoTenant
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTenantNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *TenantRepository) FindByDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"domain": domainName})
}

func (r *TenantRepository) IncrementUsers(ctx context.Context, id string, delta int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTenantNotFound
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		// The counter never goes below zero.
		filter["usage.users"] = bson.M{"$gte": -delta}
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"usage.users": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("increment tenant users: %w", err)
	}
	if res.MatchedCount == 0 && delta >= 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
