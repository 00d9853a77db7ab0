package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

type ContactRepository interface {
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	FindByEmail(ctx context.Context, userID, email string) (*model.Contact, error)
	FindByPhone(ctx context.Context, userID, phone string) (*model.Contact, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Contact, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, params model.CreateContactParams) (*model.Contact, error)
}

type contactRepo struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		SELECT * FROM contacts WHERE id = $1
	`, id)
	return HandleNotFound(&contact, err)
}

func (r *contactRepo) FindByEmail(ctx context.Context, userID, email string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		SELECT * FROM contacts
		WHERE user_id = $1 AND lower(email) = lower($2)
		ORDER BY created_at ASC
		LIMIT 1
	`, userID, email)
	return HandleNotFound(&contact, err)
}

func (r *contactRepo) FindByPhone(ctx context.Context, userID, phone string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		SELECT * FROM contacts
		WHERE user_id = $1 AND phone = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, userID, phone)
	return HandleNotFound(&contact, err)
}

func (r *contactRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contacts WHERE user_id = $1
	`, userID)
	return count, err
}

func (r *contactRepo) Create(ctx context.Context, params model.CreateContactParams) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		INSERT INTO contacts (user_id, name, email, phone, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.UserID, params.Name, params.Email, params.Phone, params.Source)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
