package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// AmenityRepo manages the amenity catalogue.
type AmenityRepo struct {
	db *sql.DB
}

func NewAmenityRepo(db *sql.DB) *AmenityRepo { return &AmenityRepo{db: db} }

// Create inserts an amenity; names are unique.
func (r *AmenityRepo) Create(ctx context.Context, a *model.Amenity) error {
	a.Name = strings.TrimSpace(a.Name)
	res, err := r.db.ExecContext(ctx, `INSERT INTO amenities (name, icon, category) VALUES (?, ?, ?)`,
		a.Name, nullString(a.Icon), nullString(a.Category))
	if err != nil {
		if isDuplicate(err) {
			return ErrAmenityExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM amenities WHERE id = ?`, a.ID).Scan(&a.CreatedAt)
}

// List returns all amenities grouped by category, then name.
func (r *AmenityRepo) List(ctx context.Context) ([]model.Amenity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, category, created_at FROM amenities ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Amenity{}
	for rows.Next() {
		var (
			a              model.Amenity
			icon, category sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &icon, &category, &a.CreatedAt); err != nil {
			return nil, err
		}
		if icon.Valid {
			s := icon.String
			a.Icon = &s
		}
		if category.Valid {
			s := category.String
			a.Category = &s
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
