package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

type sqliteClientRepo struct {
	q querier
}

func (r *sqliteClientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, name, contact_email, contact_phone, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		client.ID, client.Name, client.ContactEmail, client.ContactPhone, client.Note,
		client.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert client", err)
	}
	return nil
}

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	client := &models.Client{}
	var email, phone, note sql.NullString
	err := row.Scan(
		&client.ID, &client.Name, &email, &phone, &note, &client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	client.ContactEmail = email.String
	client.ContactPhone = phone.String
	client.Note = note.String
	return client, nil
}

func (r *sqliteClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, note, created_at
		FROM clients WHERE id = ?
	`
	client, err := scanClient(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return client, nil
}

func (r *sqliteClientRepo) GetByName(ctx context.Context, name string) (*models.Client, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, note, created_at
		FROM clients WHERE name = ?
	`
	client, err := scanClient(r.q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client by name: %w", err)
	}
	return client, nil
}

func (r *sqliteClientRepo) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients SET name = ?, contact_email = ?, contact_phone = ?, note = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		client.Name, client.ContactEmail, client.ContactPhone, client.Note,
		client.ID,
	)
	if err != nil {
		return wrapErr("update client", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client not found: %s", client.ID)
	}
	return nil
}

func (r *sqliteClientRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client not found: %s", id)
	}
	return nil
}

func (r *sqliteClientRepo) List(ctx context.Context) ([]*models.Client, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, note, created_at
		FROM clients ORDER BY name
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
