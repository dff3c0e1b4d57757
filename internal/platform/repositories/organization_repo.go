package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"visitr/internal/platform/models"
)

const organizationColumns = `id, name, email, password_hash, contact_person, phone, address, locations,
	staff_members, min_guest_visit_minutes, qr_code_url, is_active, created_at, updated_at`

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	locations, err := json.Marshal(org.Locations)
	if err != nil {
		return err
	}
	staff, err := json.Marshal(org.StaffMembers)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Email, org.Password, org.ContactPerson, org.Phone, org.Address,
		string(locations), string(staff), org.MinGuestVisitMinutes, org.QRCodeURL, org.IsActive,
		toMillis(org.CreatedAt), toMillis(org.UpdatedAt))
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func scanOrganization(row scanner) (*models.Organization, error) {
	org := &models.Organization{}
	var locations, staff string
	var qrCode sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&org.ID, &org.Name, &org.Email, &org.Password, &org.ContactPerson, &org.Phone,
		&org.Address, &locations, &staff, &org.MinGuestVisitMinutes, &qrCode, &org.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(locations), &org.Locations); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(staff), &org.StaffMembers); err != nil {
		return nil, err
	}
	org.QRCodeURL = nullString(qrCode)
	org.CreatedAt = fromMillis(createdAt)
	org.UpdatedAt = fromMillis(updatedAt)
	return org, nil
}

func (r *OrganizationRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE `+where, arg)
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *OrganizationRepository) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	return r.getOne(ctx, "email = ?", email)
}

// Update writes the editable profile fields.
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	locations, err := json.Marshal(org.Locations)
	if err != nil {
		return err
	}
	staff, err := json.Marshal(org.StaffMembers)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE organizations
		SET name = ?, contact_person = ?, phone = ?, address = ?, locations = ?, staff_members = ?,
			min_guest_visit_minutes = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.ContactPerson, org.Phone, org.Address, string(locations), string(staff),
		org.MinGuestVisitMinutes, org.IsActive, toMillis(org.UpdatedAt), org.ID)
	return err
}

func (r *OrganizationRepository) UpdateQRCode(ctx context.Context, id, qrCodeURL string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE organizations SET qr_code_url = ?, updated_at = ? WHERE id = ?`,
		qrCodeURL, toMillis(at), id)
	return err
}

func (r *OrganizationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
