package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/formforge/formforge/model"
)

// SQLite backs both stores with a single database handle.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db}
}

func (s *SQLite) Get(ctx context.Context, id string) (doc model.FormDocument, err error) {
	var content string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, status, published, content, created_at, updated_at
		FROM form
		WHERE id = ?`,
		id,
	).Scan(
		&doc.ID, &doc.UserID, &doc.Title, &doc.Description,
		&doc.Status, &doc.Published, &content,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, errors.Wrap(err, "get form")
	}

	err = json.Unmarshal([]byte(content), &doc.Content)
	if err != nil {
		return doc, errors.Wrap(err, "get form: parse content")
	}
	return doc, nil
}

func (s *SQLite) Upsert(ctx context.Context, doc model.FormDocument) (model.FormDocument, error) {
	if doc.Content == nil {
		doc.Content = []model.FieldDefinition{}
	}
	content, err := json.Marshal(doc.Content)
	if err != nil {
		return doc, errors.Wrap(err, "upsert form: marshal content")
	}
	if doc.Status == "" {
		doc.Status = model.StatusDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return doc, errors.Wrap(err, "upsert form: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if doc.ID != "" {
		err := tx.QueryRowContext(ctx, `
			UPDATE form
			SET
				title = ?,
				description = ?,
				status = ?,
				published = ?,
				content = ?,
				updated_at = ?
			WHERE id = ?
			RETURNING user_id, created_at`,
			doc.Title, doc.Description, doc.Status, doc.Published,
			string(content), now, doc.ID,
		).Scan(&doc.UserID, &doc.CreatedAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// unmatched id: fall through to create
			break
		case err != nil:
			return doc, errors.Wrap(err, "upsert form: update")
		default:
			if err := tx.Commit(); err != nil {
				return doc, errors.Wrap(err, "upsert form: commit")
			}
			doc.UpdatedAt = now
			return doc, nil
		}
	}

	doc.ID = uuid.Must(uuid.NewV4()).String()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO form (id, user_id, title, description, status, published, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Title, doc.Description,
		doc.Status, doc.Published, string(content),
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return doc, errors.Wrap(err, "upsert form: insert")
	}

	if err := tx.Commit(); err != nil {
		return doc, errors.Wrap(err, "upsert form: commit")
	}
	return doc, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "delete form: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM submission WHERE form_id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete form: submissions")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form: verify")
	}
	if n < 1 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "delete form: commit")
}

func (s *SQLite) ListByOwner(ctx context.Context, userID string) ([]model.FormDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, status, published, content, created_at, updated_at
		FROM form
		WHERE user_id = ?
		ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list forms")
	}
	defer rows.Close()

	docs := []model.FormDocument{}
	for rows.Next() {
		var doc model.FormDocument
		var content string
		err = rows.Scan(
			&doc.ID, &doc.UserID, &doc.Title, &doc.Description,
			&doc.Status, &doc.Published, &content,
			&doc.CreatedAt, &doc.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "list forms: scan")
		}
		err = json.Unmarshal([]byte(content), &doc.Content)
		if err != nil {
			return nil, errors.Wrap(err, "list forms: parse content")
		}
		docs = append(docs, doc)
	}
	return docs, errors.Wrap(rows.Err(), "list forms: iterate")
}

func (s *SQLite) Create(ctx context.Context, formID string, answers map[string]any) (sub model.Submission, err error) {
	if answers == nil {
		answers = map[string]any{}
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return sub, errors.Wrap(err, "create submission: marshal answers")
	}

	sub = model.Submission{
		ID:        uuid.Must(uuid.NewV4()).String(),
		FormID:    formID,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submission (id, form_id, answers, created_at)
		VALUES (?, ?, ?, ?)`,
		sub.ID, sub.FormID, string(payload), sub.CreatedAt,
	)
	if err != nil {
		return sub, errors.Wrap(err, "create submission")
	}
	return sub, nil
}

func (s *SQLite) ListByForm(ctx context.Context, formID string) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, answers, created_at
		FROM submission
		WHERE form_id = ?
		ORDER BY created_at`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		var answers string
		err = rows.Scan(&sub.ID, &sub.FormID, &answers, &sub.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "list submissions: scan")
		}
		err = json.Unmarshal([]byte(answers), &sub.Answers)
		if err != nil {
			return nil, errors.Wrap(err, "list submissions: parse answers")
		}
		subs = append(subs, sub)
	}
	return subs, errors.Wrap(rows.Err(), "list submissions: iterate")
}

func (s *SQLite) CountByForm(ctx context.Context, formID string) (n int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM submission WHERE form_id = ?`,
		formID,
	).Scan(&n)
	return n, errors.Wrap(err, "count submissions")
}
