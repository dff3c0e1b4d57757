package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"visitr/internal/platform/models"
)

const organizationsCollection = "organizations"

type OrganizationRepository struct {
	coll *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{coll: db.Collection(organizationsCollection)}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.coll.InsertOne(ctx, org)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func (r *OrganizationRepository) findOne(ctx context.Context, filter bson.M) (*models.Organization, error) {
	org := &models.Organization{}
	if err := r.coll.FindOne(ctx, filter).Decode(org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrganizationRepository) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	_, err := r.coll.UpdateByID(ctx, org.ID, bson.M{"$set": bson.M{
		"name":                 org.Name,
		"contactPerson":        org.ContactPerson,
		"phone":                org.Phone,
		"address":              org.Address,
		"locations":            org.Locations,
		"staffMembers":         org.StaffMembers,
		"minGuestVisitMinutes": org.MinGuestVisitMinutes,
		"isActive":             org.IsActive,
		"updatedAt":            org.UpdatedAt,
	}})
	return err
}

func (r *OrganizationRepository) UpdateQRCode(ctx context.Context, id, qrCodeURL string, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"qrCodeUrl": qrCodeURL, "updatedAt": at}})
	return err
}

func (r *OrganizationRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
