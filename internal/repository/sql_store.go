package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"orgsite-backend/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore implements Store on database/sql. Queries are written with "?"
// placeholders and rebound for postgres. Timestamps are stored as unix nanoseconds.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mapSQLErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

func unixNano(t time.Time) int64 { return t.UnixNano() }

func fromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }

func stampOrNow(t *time.Time) int64 {
	if t == nil {
		return unixNano(time.Now())
	}
	return unixNano(*t)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullTime(p *time.Time) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: unixNano(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnixNano(n.Int64)
	return &t
}

func (s *SQLStore) execAffecting(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return mapSQLErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- events ----------------

const eventColumns = `uid, title, slug, description, event_date, location, max_participants, created_at, updated_at`

func (s *SQLStore) InsertEvent(ctx context.Context, e *models.Event) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.UID, e.Title, e.Slug, e.Description, unixNano(e.Date), e.Location,
		nullInt(e.MaxParticipants), stampOrNow(e.CreatedAt), stampOrNow(e.UpdatedAt),
	)
	return mapSQLErr(err)
}

func (s *SQLStore) FindEventByUID(ctx context.Context, uid string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+eventColumns+` FROM events WHERE uid = ?`), uid)

	var (
		e                  models.Event
		date, created, upd int64
		maxParticipants    sql.NullInt64
	)
	err := row.Scan(&e.UID, &e.Title, &e.Slug, &e.Description, &date, &e.Location, &maxParticipants, &created, &upd)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	e.Date = fromUnixNano(date)
	e.MaxParticipants = intPtr(maxParticipants)
	createdAt, updatedAt := fromUnixNano(created), fromUnixNano(upd)
	e.CreatedAt, e.UpdatedAt = &createdAt, &updatedAt
	return &e, nil
}

func (s *SQLStore) DeleteEvent(ctx context.Context, uid string) error {
	return s.execAffecting(ctx, `DELETE FROM events WHERE uid = ?`, uid)
}

// ---------------- forms ----------------

const formColumns = `uid, event_uid, is_active, custom_fields, max_registrations, registration_deadline, confirmation_message, created_at, updated_at`

func scanForm(row scanner) (*models.RegistrationForm, error) {
	var (
		f            models.RegistrationForm
		fields       string
		maxRegs      sql.NullInt64
		deadline     sql.NullInt64
		created, upd int64
	)
	if err := row.Scan(&f.UID, &f.EventUID, &f.IsActive, &fields, &maxRegs, &deadline, &f.ConfirmationMessage, &created, &upd); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &f.CustomFields); err != nil {
		return nil, fmt.Errorf("decode custom fields of %s: %w", f.UID, err)
	}
	f.MaxRegistrations = intPtr(maxRegs)
	f.RegistrationDeadline = timePtr(deadline)
	createdAt, updatedAt := fromUnixNano(created), fromUnixNano(upd)
	f.CreatedAt, f.UpdatedAt = &createdAt, &updatedAt
	return &f, nil
}

func encodeFields(fields []models.CustomField) (string, error) {
	if fields == nil {
		fields = []models.CustomField{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode custom fields: %w", err)
	}
	return string(b), nil
}

func (s *SQLStore) InsertForm(ctx context.Context, f *models.RegistrationForm) error {
	fields, err := encodeFields(f.CustomFields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO registration_forms (`+formColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		f.UID, f.EventUID, f.IsActive, fields, nullInt(f.MaxRegistrations), nullTime(f.RegistrationDeadline),
		f.ConfirmationMessage, stampOrNow(f.CreatedAt), stampOrNow(f.UpdatedAt),
	)
	return mapSQLErr(err)
}

func (s *SQLStore) findForm(ctx context.Context, where string, args ...any) (*models.RegistrationForm, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+formColumns+` FROM registration_forms WHERE `+where), args...)
	f, err := scanForm(row)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	return f, nil
}

func (s *SQLStore) FindFormByUID(ctx context.Context, uid string) (*models.RegistrationForm, error) {
	return s.findForm(ctx, `uid = ?`, uid)
}

func (s *SQLStore) FindFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error) {
	return s.findForm(ctx, `event_uid = ?`, eventUID)
}

func (s *SQLStore) FindActiveFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error) {
	return s.findForm(ctx, `event_uid = ? AND is_active = ?`, eventUID, true)
}

func (s *SQLStore) ListForms(ctx context.Context) ([]models.RegistrationForm, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+formColumns+` FROM registration_forms ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []models.RegistrationForm{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

func (s *SQLStore) UpdateForm(ctx context.Context, f *models.RegistrationForm) error {
	fields, err := encodeFields(f.CustomFields)
	if err != nil {
		return err
	}
	return s.execAffecting(ctx, `UPDATE registration_forms
		SET is_active = ?, custom_fields = ?, max_registrations = ?, registration_deadline = ?,
			confirmation_message = ?, updated_at = ?
		WHERE uid = ?`,
		f.IsActive, fields, nullInt(f.MaxRegistrations), nullTime(f.RegistrationDeadline),
		f.ConfirmationMessage, stampOrNow(f.UpdatedAt), f.UID,
	)
}

func (s *SQLStore) DeleteForm(ctx context.Context, uid string) error {
	return s.execAffecting(ctx, `DELETE FROM registration_forms WHERE uid = ?`, uid)
}

func (s *SQLStore) DeleteFormsByEvent(ctx context.Context, eventUID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM registration_forms WHERE event_uid = ?`), eventUID)
	return err
}

// ---------------- registrations ----------------

const registrationColumns = `uid, form_uid, event_uid, user_uid, name, email, phone, nationality, school, department, student_id, custom_responses, status, submitted_at, updated_at`

func scanRegistration(row scanner) (*models.Registration, error) {
	var (
		reg       models.Registration
		userUID   sql.NullString
		responses string
		submitted int64
		updated   sql.NullInt64
	)
	err := row.Scan(&reg.UID, &reg.FormUID, &reg.EventUID, &userUID, &reg.Name, &reg.Email, &reg.Phone,
		&reg.Nationality, &reg.School, &reg.Department, &reg.StudentID, &responses, &reg.Status, &submitted, &updated)
	if err != nil {
		return nil, err
	}
	if userUID.Valid {
		uid := userUID.String
		reg.UserUID = &uid
	}
	if err := json.Unmarshal([]byte(responses), &reg.CustomResponses); err != nil {
		return nil, fmt.Errorf("decode responses of %s: %w", reg.UID, err)
	}
	reg.SubmittedAt = fromUnixNano(submitted)
	reg.UpdatedAt = timePtr(updated)
	return &reg, nil
}

// InsertRegistration runs the counter reservation and the insert in one transaction.
// The conditional UPDATE on the counter row serialises competing submissions for the
// same event; the UNIQUE (event_uid, email) constraint rejects duplicates.
func (s *SQLStore) InsertRegistration(ctx context.Context, reg *models.Registration, limit *int) error {
	responses := reg.CustomResponses
	if responses == nil {
		responses = []models.CustomResponse{}
	}
	encoded, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO registration_counters (event_uid, taken)
		SELECT CAST(? AS TEXT), COUNT(*) FROM registrations WHERE event_uid = ?
		ON CONFLICT (event_uid) DO NOTHING`), reg.EventUID, reg.EventUID); err != nil {
		return fmt.Errorf("seed counter: %w", err)
	}

	q := `UPDATE registration_counters SET taken = taken + 1 WHERE event_uid = ?`
	args := []any{reg.EventUID}
	if limit != nil {
		q += ` AND taken < ?`
		args = append(args, *limit)
	}
	res, err := tx.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrCapacityReached
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO registrations (`+registrationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		reg.UID, reg.FormUID, reg.EventUID, nullString(reg.UserUID), reg.Name, reg.Email, reg.Phone,
		reg.Nationality, reg.School, reg.Department, reg.StudentID, string(encoded), string(reg.Status),
		unixNano(reg.SubmittedAt), nullTime(reg.UpdatedAt),
	)
	if err != nil {
		return mapSQLErr(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLStore) FindRegistrationByUID(ctx context.Context, uid string) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+registrationColumns+` FROM registrations WHERE uid = ?`), uid)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	return reg, nil
}

func (s *SQLStore) ExistsRegistration(ctx context.Context, eventUID, email string) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM registrations WHERE event_uid = ? AND email = ?`), eventUID, email,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) CountRegistrations(ctx context.Context, eventUID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM registrations WHERE event_uid = ?`), eventUID).Scan(&n)
	return n, err
}

func (s *SQLStore) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	var (
		conds []string
		args  []any
	)
	if f.EventUID != "" {
		conds = append(conds, "event_uid = ?")
		args = append(args, f.EventUID)
	}
	if f.FormUID != "" {
		conds = append(conds, "form_uid = ?")
		args = append(args, f.FormUID)
	}
	if f.UserUID != "" {
		conds = append(conds, "user_uid = ?")
		args = append(args, f.UserUID)
	}

	q := `SELECT ` + registrationColumns + ` FROM registrations`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	if f.Ascending {
		q += ` ORDER BY submitted_at ASC`
	} else {
		q += ` ORDER BY submitted_at DESC`
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (s *SQLStore) UpdateRegistrationStatus(ctx context.Context, uid string, status models.Status, ownerUID string) (*models.Registration, error) {
	q := `UPDATE registrations SET status = ?, updated_at = ? WHERE uid = ?`
	args := []any{string(status), unixNano(time.Now()), uid}
	if ownerUID != "" {
		q += ` AND user_uid = ?`
		args = append(args, ownerUID)
	}
	if err := s.execAffecting(ctx, q, args...); err != nil {
		return nil, err
	}
	return s.FindRegistrationByUID(ctx, uid)
}

func (s *SQLStore) DeleteRegistration(ctx context.Context, uid string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var eventUID string
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT event_uid FROM registrations WHERE uid = ?`), uid).Scan(&eventUID)
	if err != nil {
		return mapSQLErr(err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM registrations WHERE uid = ?`), uid); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE registration_counters SET taken = taken - 1 WHERE event_uid = ? AND taken > 0`), eventUID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteRegistrationsByEvent(ctx context.Context, eventUID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM registrations WHERE event_uid = ?`), eventUID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM registration_counters WHERE event_uid = ?`), eventUID); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// ---------------- users ----------------

const userColumns = `uid, username, name, email, password_hash, role, created_at, updated_at`

func (s *SQLStore) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		u.UID, u.Username, u.Name, u.Email, u.PasswordHash, string(u.Role), unixNano(u.CreatedAt), unixNano(u.UpdatedAt),
	)
	return mapSQLErr(err)
}

func (s *SQLStore) findUser(ctx context.Context, where string, arg string) (*models.User, error) {
	var (
		u            models.User
		created, upd int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE `+where), arg).
		Scan(&u.UID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &created, &upd)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	u.CreatedAt, u.UpdatedAt = fromUnixNano(created), fromUnixNano(upd)
	return &u, nil
}

func (s *SQLStore) FindUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findUser(ctx, `uid = ?`, uid)
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `email = ?`, email)
}

func (s *SQLStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, `username = ?`, username)
}
