package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"visitr/internal/platform/models"
)

const guestColumns = `id, guest_name, guest_phone, guest_email, guest_code, organization_id, location,
	person_to_see, purpose, sign_in_time, sign_out_time, expected_duration, min_visit_duration,
	id_card_number, id_card_assigned, status, security_notified, created_at, updated_at`

// overdueClause matches signed-in visits whose expected end is before the bound argument.
const overdueClause = `status = 'signed-in' AND sign_in_time + expected_duration * 60000 < ?`

type GuestRepository struct {
	db *sql.DB
}

func NewGuestRepository(db *sql.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) Create(ctx context.Context, g *models.Guest) error {
	var signOut interface{}
	if g.SignOutTime != nil {
		signOut = toMillis(*g.SignOutTime)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guests (`+guestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.GuestName, g.GuestPhone, g.GuestEmail, g.GuestCode, g.OrganizationID, g.Location,
		g.PersonToSee, g.Purpose, toMillis(g.SignInTime), signOut, g.ExpectedDuration, g.MinVisitDuration,
		g.IDCardNumber, g.IDCardAssigned, g.Status, g.SecurityNotified, toMillis(g.CreatedAt), toMillis(g.UpdatedAt))
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func scanGuest(row scanner) (*models.Guest, error) {
	g := &models.Guest{}
	var email, purpose, card sql.NullString
	var signOut sql.NullInt64
	var signIn, createdAt, updatedAt int64

	err := row.Scan(&g.ID, &g.GuestName, &g.GuestPhone, &email, &g.GuestCode, &g.OrganizationID,
		&g.Location, &g.PersonToSee, &purpose, &signIn, &signOut, &g.ExpectedDuration,
		&g.MinVisitDuration, &card, &g.IDCardAssigned, &g.Status, &g.SecurityNotified,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	g.GuestEmail = nullString(email)
	g.Purpose = nullString(purpose)
	g.IDCardNumber = nullString(card)
	g.SignInTime = fromMillis(signIn)
	g.SignOutTime = nullMillis(signOut)
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	return g, nil
}

func (r *GuestRepository) queryGuests(ctx context.Context, query string, args ...interface{}) ([]*models.Guest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []*models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *GuestRepository) getOne(ctx context.Context, where string, args ...interface{}) (*models.Guest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE `+where, args...)
	g, err := scanGuest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

func (r *GuestRepository) GetByID(ctx context.Context, orgID, id string) (*models.Guest, error) {
	return r.getOne(ctx, `id = ? AND organization_id = ?`, id, orgID)
}

func (r *GuestRepository) GetSignedInByCode(ctx context.Context, orgID, code string) (*models.Guest, error) {
	return r.getOne(ctx, `guest_code = ? AND organization_id = ? AND status = 'signed-in'`, code, orgID)
}

func (r *GuestRepository) execMatched(ctx context.Context, query string, args ...interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GuestRepository) SignOut(ctx context.Context, orgID, id string, at time.Time) (bool, error) {
	return r.execMatched(ctx, `
		UPDATE guests SET status = 'signed-out', sign_out_time = ?, updated_at = ?
		WHERE id = ? AND organization_id = ? AND status = 'signed-in'
	`, toMillis(at), toMillis(at), id, orgID)
}

func (r *GuestRepository) AssignIDCard(ctx context.Context, orgID, id, cardNumber string, at time.Time) (bool, error) {
	return r.execMatched(ctx, `
		UPDATE guests SET id_card_number = ?, id_card_assigned = 1, updated_at = ?
		WHERE id = ? AND organization_id = ? AND status = 'signed-in'
	`, cardNumber, toMillis(at), id, orgID)
}

func (r *GuestRepository) Extend(ctx context.Context, orgID, id string, minutes int, at time.Time) (int, bool, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		UPDATE guests SET expected_duration = expected_duration + ?, updated_at = ?
		WHERE id = ? AND organization_id = ? AND status = 'signed-in'
		RETURNING expected_duration
	`, minutes, toMillis(at), id, orgID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return total, true, nil
}

func guestFilterClause(f models.GuestFilter) (string, []interface{}) {
	clauses := []string{"organization_id = ?"}
	args := []interface{}{f.OrganizationID}

	switch f.Status {
	case "":
	case models.StatusExpired:
		clauses = append(clauses, overdueClause)
		args = append(args, toMillis(f.Now))
	default:
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *GuestRepository) List(ctx context.Context, f models.GuestFilter) ([]*models.Guest, int64, error) {
	where, args := guestFilterClause(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	guests, err := r.queryGuests(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE `+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *GuestRepository) ListBySignIn(ctx context.Context, orgID string, dr models.DateRange) ([]*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE organization_id = ?`
	args := []interface{}{orgID}

	if !dr.From.IsZero() {
		query += ` AND sign_in_time >= ?`
		args = append(args, toMillis(dr.From))
	}
	if !dr.Until.IsZero() {
		query += ` AND sign_in_time < ?`
		args = append(args, toMillis(dr.Until))
	}
	query += ` ORDER BY sign_in_time DESC`

	return r.queryGuests(ctx, query, args...)
}

func (r *GuestRepository) Recent(ctx context.Context, orgID string, limit int) ([]*models.Guest, error) {
	return r.queryGuests(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE organization_id = ? ORDER BY created_at DESC LIMIT ?`,
		orgID, limit)
}

func (r *GuestRepository) Stats(ctx context.Context, orgID string, dayStart, dayEnd time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'signed-in' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'signed-in' AND id_card_assigned = 0 THEN 1 ELSE 0 END), 0)
		FROM guests WHERE organization_id = ?
	`, toMillis(dayStart), toMillis(dayEnd), orgID).Scan(
		&stats.TotalGuests, &stats.ActiveGuests, &stats.TodayGuests, &stats.PendingIDAssignments)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListOverdue returns overdue signed-in visits, across all organizations,
// that security has not been told about yet.
func (r *GuestRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*models.Guest, error) {
	return r.queryGuests(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE `+overdueClause+` AND security_notified = 0
		ORDER BY sign_in_time ASC LIMIT ?`,
		toMillis(now), limit)
}

func (r *GuestRepository) MarkSecurityNotified(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE guests SET security_notified = 1, updated_at = ? WHERE id = ?`,
		toMillis(at), id)
	return err
}
