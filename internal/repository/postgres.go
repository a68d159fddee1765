package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// scheduleDocumentID is the primary key of the single schedule row.
const scheduleDocumentID = 1

// PostgresScheduleBackend keeps the schedule document as one JSONB row.
type PostgresScheduleBackend struct {
	db *pgxpool.Pool
}

// NewPostgresScheduleBackend constructs a PostgresScheduleBackend.
func NewPostgresScheduleBackend(db *pgxpool.Pool) *PostgresScheduleBackend {
	return &PostgresScheduleBackend{db: db}
}

// LoadSchedule reads the schedule row.
func (b *PostgresScheduleBackend) LoadSchedule(ctx context.Context) ([]model.FitnessClass, error) {
	var body []byte
	err := b.db.QueryRow(ctx,
		`SELECT body FROM schedule_documents WHERE id = $1`,
		scheduleDocumentID,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentMissing
		}
		return nil, fmt.Errorf("select schedule: %w", err)
	}

	var classes []model.FitnessClass
	if err := json.Unmarshal(body, &classes); err != nil {
		return nil, fmt.Errorf("%w: schedule_documents: %v", ErrDocumentCorrupt, err)
	}
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	return classes, nil
}

// SaveSchedule upserts the schedule row in a single statement.
func (b *PostgresScheduleBackend) SaveSchedule(ctx context.Context, classes []model.FitnessClass) error {
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	body, err := json.Marshal(classes)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	_, err = b.db.Exec(ctx,
		`INSERT INTO schedule_documents (id, body, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		scheduleDocumentID, body,
	)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

// PostgresRegistrationBackend keeps registrations as append-only rows.
type PostgresRegistrationBackend struct {
	db *pgxpool.Pool
}

// NewPostgresRegistrationBackend constructs a PostgresRegistrationBackend.
func NewPostgresRegistrationBackend(db *pgxpool.Pool) *PostgresRegistrationBackend {
	return &PostgresRegistrationBackend{db: db}
}

// LoadRegistrations returns every registration ordered by id.
func (b *PostgresRegistrationBackend) LoadRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := b.db.Query(ctx,
		`SELECT registration_id, class_id, user_name, phone_number, registered_at, confirmation_code
		 FROM registrations
		 ORDER BY registration_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.ClassID, &reg.UserName, &reg.PhoneNumber, &reg.RegisteredAt, &reg.ConfirmationCode); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.RegisteredAt = reg.RegisteredAt.UTC()
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// AppendRegistration inserts one row. The insert is committed when Exec returns.
func (b *PostgresRegistrationBackend) AppendRegistration(ctx context.Context, reg model.Registration) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO registrations (registration_id, class_id, user_name, phone_number, registered_at, confirmation_code)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.ClassID, reg.UserName, reg.PhoneNumber, reg.RegisteredAt, reg.ConfirmationCode,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("registration %d already exists: %w", reg.ID, err)
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
