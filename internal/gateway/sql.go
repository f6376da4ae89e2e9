package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/khrees2412/jobtracker/internal/database"
	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/pkg/models"
)

const applicationColumns = `id, user_id, company_name, role, location_type, application_link,
	date_applied, status, notes, created_at, updated_at`

// SQLGateway stores applications in the applications table of a SQLite or
// PostgreSQL database.
type SQLGateway struct {
	db      *sql.DB
	adapter database.Adapter
	clock   Clock
	ids     IDGenerator
}

func NewSQLGateway(db *sql.DB, adapter database.Adapter, clock Clock, ids IDGenerator) *SQLGateway {
	return &SQLGateway{
		db:      db,
		adapter: adapter,
		clock:   clock,
		ids:     ids,
	}
}

func (g *SQLGateway) List(ctx context.Context, owner string) ([]models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}

	query := g.adapter.Rebind(`SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = ?
		ORDER BY date_applied DESC, created_at DESC`)
	rows, err := g.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, models.NewStoreError("list applications", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, models.NewStoreError("scan application", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("list applications", err)
	}
	return apps, nil
}

func (g *SQLGateway) Create(ctx context.Context, owner string, input models.ApplicationInput) (models.Application, error) {
	input, err := prepareCreate(owner, input)
	if err != nil {
		return models.Application{}, err
	}

	app := materialize(g.ids.New(), owner, input, g.clock.Now().UTC())
	query := g.adapter.Rebind(`INSERT INTO applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = g.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.CompanyName, app.Role, string(app.LocationType), app.ApplicationLink,
		app.DateApplied, string(app.Status), app.Notes, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return models.Application{}, models.NewStoreError("insert application", err)
	}

	return app, nil
}

func (g *SQLGateway) Update(ctx context.Context, owner, id string, patch models.ApplicationPatch) (models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return models.Application{}, err
	}
	patch, err := validation.ValidatePatch(patch)
	if err != nil {
		return models.Application{}, err
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Application{}, models.NewStoreError("begin update", err)
	}
	defer tx.Rollback()

	query := g.adapter.Rebind(`SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = ? AND user_id = ?`)
	current, err := scanApplication(tx.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Application{}, fmt.Errorf("application %s: %w", id, models.ErrNotFound)
		}
		return models.Application{}, models.NewStoreError("lookup application", err)
	}

	updated := patch.ApplyTo(current)
	updated.UpdatedAt = g.clock.Now().UTC()

	query = g.adapter.Rebind(`UPDATE applications
		SET company_name = ?, role = ?, location_type = ?, application_link = ?,
			date_applied = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	_, err = tx.ExecContext(ctx, query,
		updated.CompanyName, updated.Role, string(updated.LocationType), updated.ApplicationLink,
		updated.DateApplied, string(updated.Status), updated.Notes, updated.UpdatedAt,
		id, owner)
	if err != nil {
		return models.Application{}, models.NewStoreError("update application", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Application{}, models.NewStoreError("commit update", err)
	}
	return updated, nil
}

func (g *SQLGateway) Delete(ctx context.Context, owner, id string) error {
	if err := checkOwner(owner); err != nil {
		return err
	}

	query := g.adapter.Rebind(`DELETE FROM applications WHERE id = ? AND user_id = ?`)
	result, err := g.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return models.NewStoreError("delete application", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.NewStoreError("delete application", err)
	}
	if affected == 0 {
		return fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	var location, status string
	err := row.Scan(&app.ID, &app.UserID, &app.CompanyName, &app.Role, &location,
		&app.ApplicationLink, &app.DateApplied, &status, &app.Notes,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return models.Application{}, err
	}
	app.LocationType = models.LocationType(location)
	app.Status = models.Status(status)
	return app, nil
}
