package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"visitr/internal/platform/models"
)

const guestsCollection = "guests"

type GuestRepository struct {
	coll *mongo.Collection
}

func NewGuestRepository(db *mongo.Database) *GuestRepository {
	return &GuestRepository{coll: db.Collection(guestsCollection)}
}

// overdueExpr matches documents whose signInTime plus expectedDuration
// minutes lies before now.
func overdueExpr(now time.Time) bson.M {
	return bson.M{"$lt": bson.A{
		bson.M{"$add": bson.A{"$signInTime", bson.M{"$multiply": bson.A{"$expectedDuration", 60000}}}},
		now,
	}}
}

func signedIn(orgID, id string) bson.M {
	return bson.M{"_id": id, "organizationId": orgID, "status": models.StatusSignedIn}
}

func listFilter(f models.GuestFilter) bson.M {
	filter := bson.M{"organizationId": f.OrganizationID}
	switch f.Status {
	case "":
	case models.StatusExpired:
		filter["status"] = models.StatusSignedIn
		filter["$expr"] = overdueExpr(f.Now)
	default:
		filter["status"] = f.Status
	}
	return filter
}

func signInRangeFilter(orgID string, r models.DateRange) bson.M {
	filter := bson.M{"organizationId": orgID}
	bounds := bson.M{}
	if !r.From.IsZero() {
		bounds["$gte"] = r.From
	}
	if !r.Until.IsZero() {
		bounds["$lt"] = r.Until
	}
	if len(bounds) > 0 {
		filter["signInTime"] = bounds
	}
	return filter
}

func overdueFilter(now time.Time) bson.M {
	return bson.M{
		"status":           models.StatusSignedIn,
		"securityNotified": false,
		"$expr":            overdueExpr(now),
	}
}

func (r *GuestRepository) Create(ctx context.Context, g *models.Guest) error {
	_, err := r.coll.InsertOne(ctx, g)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func (r *GuestRepository) findOne(ctx context.Context, filter bson.M) (*models.Guest, error) {
	g := &models.Guest{}
	if err := r.coll.FindOne(ctx, filter).Decode(g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

func (r *GuestRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Guest, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var guests []*models.Guest
	if err := cursor.All(ctx, &guests); err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *GuestRepository) GetByID(ctx context.Context, orgID, id string) (*models.Guest, error) {
	return r.findOne(ctx, bson.M{"_id": id, "organizationId": orgID})
}

func (r *GuestRepository) GetSignedInByCode(ctx context.Context, orgID, code string) (*models.Guest, error) {
	return r.findOne(ctx, bson.M{"guestCode": code, "organizationId": orgID, "status": models.StatusSignedIn})
}

func (r *GuestRepository) updateSignedIn(ctx context.Context, orgID, id string, update bson.M) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, signedIn(orgID, id), update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *GuestRepository) SignOut(ctx context.Context, orgID, id string, at time.Time) (bool, error) {
	return r.updateSignedIn(ctx, orgID, id, bson.M{"$set": bson.M{
		"status":      models.StatusSignedOut,
		"signOutTime": at,
		"updatedAt":   at,
	}})
}

func (r *GuestRepository) AssignIDCard(ctx context.Context, orgID, id, cardNumber string, at time.Time) (bool, error) {
	return r.updateSignedIn(ctx, orgID, id, bson.M{"$set": bson.M{
		"idCardNumber":   cardNumber,
		"idCardAssigned": true,
		"updatedAt":      at,
	}})
}

func (r *GuestRepository) Extend(ctx context.Context, orgID, id string, minutes int, at time.Time) (int, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"expectedDuration": minutes},
		"$set": bson.M{"updatedAt": at},
	}

	g := &models.Guest{}
	if err := r.coll.FindOneAndUpdate(ctx, signedIn(orgID, id), update, opts).Decode(g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return g.ExpectedDuration, true, nil
}

func (r *GuestRepository) List(ctx context.Context, f models.GuestFilter) ([]*models.Guest, int64, error) {
	filter := listFilter(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))
	guests, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *GuestRepository) ListBySignIn(ctx context.Context, orgID string, dr models.DateRange) ([]*models.Guest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "signInTime", Value: -1}})
	return r.find(ctx, signInRangeFilter(orgID, dr), opts)
}

func (r *GuestRepository) Recent(ctx context.Context, orgID string, limit int) ([]*models.Guest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"organizationId": orgID}, opts)
}

func (r *GuestRepository) Stats(ctx context.Context, orgID string, dayStart, dayEnd time.Time) (*models.DashboardStats, error) {
	filters := []bson.M{
		{"organizationId": orgID},
		{"organizationId": orgID, "status": models.StatusSignedIn},
		{"organizationId": orgID, "createdAt": bson.M{"$gte": dayStart, "$lt": dayEnd}},
		{"organizationId": orgID, "status": models.StatusSignedIn, "idCardAssigned": false},
	}

	counts := make([]int64, len(filters))
	for i, filter := range filters {
		n, err := r.coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}

	return &models.DashboardStats{
		TotalGuests:          counts[0],
		ActiveGuests:         counts[1],
		TodayGuests:          counts[2],
		PendingIDAssignments: counts[3],
	}, nil
}

func (r *GuestRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*models.Guest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "signInTime", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, overdueFilter(now), opts)
}

func (r *GuestRepository) MarkSecurityNotified(ctx context.Context, id string, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"securityNotified": true, "updatedAt": at}})
	return err
}
