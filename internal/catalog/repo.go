package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errListingNotFound = apperr.NotFound("Listing not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListPremade(ctx context.Context, sort Sort) ([]PremadeListing, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, description, image_link, price, date_listed
		FROM pre_made_listings
		ORDER BY `+sort.orderBy())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PremadeListing{}
	for rows.Next() {
		var l PremadeListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.Price, &l.DateListed); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CreatePremade(ctx context.Context, in ListingInput) (PremadeListing, error) {
	var l PremadeListing
	err := r.DB.QueryRow(ctx, `
		INSERT INTO pre_made_listings (title, description, image_link, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, image_link, price, date_listed
	`, in.Title, in.Description, in.ImageLink, in.Price).
		Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.Price, &l.DateListed)
	return l, err
}

func (r *Repo) UpdatePremade(ctx context.Context, id int, in ListingInput) (PremadeListing, error) {
	var l PremadeListing
	err := r.DB.QueryRow(ctx, `
		UPDATE pre_made_listings
		SET title = $1, description = $2, image_link = $3, price = $4
		WHERE id = $5
		RETURNING id, title, description, image_link, price, date_listed
	`, in.Title, in.Description, in.ImageLink, in.Price, id).
		Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.Price, &l.DateListed)
	if errors.Is(err, pgx.ErrNoRows) {
		return PremadeListing{}, errListingNotFound
	}
	return l, err
}

func (r *Repo) DeletePremade(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM pre_made_listings WHERE id = $1`, id)
}

func (r *Repo) ListCustom(ctx context.Context) ([]CustomListing, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, description, image_link, starting_price
		FROM custom_listings
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CustomListing{}
	for rows.Next() {
		var l CustomListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.StartingPrice); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) CreateCustom(ctx context.Context, in ListingInput) (CustomListing, error) {
	var l CustomListing
	err := r.DB.QueryRow(ctx, `
		INSERT INTO custom_listings (title, description, image_link, starting_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, image_link, starting_price
	`, in.Title, in.Description, in.ImageLink, in.Price).
		Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.StartingPrice)
	return l, err
}

func (r *Repo) UpdateCustom(ctx context.Context, id int, in ListingInput) (CustomListing, error) {
	var l CustomListing
	err := r.DB.QueryRow(ctx, `
		UPDATE custom_listings
		SET title = $1, description = $2, image_link = $3, starting_price = $4
		WHERE id = $5
		RETURNING id, title, description, image_link, starting_price
	`, in.Title, in.Description, in.ImageLink, in.Price, id).
		Scan(&l.ID, &l.Title, &l.Description, &l.ImageLink, &l.StartingPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomListing{}, errListingNotFound
	}
	return l, err
}

func (r *Repo) DeleteCustom(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM custom_listings WHERE id = $1`, id)
}

func (r *Repo) deleteByID(ctx context.Context, query string, id int) error {
	ct, err := r.DB.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errListingNotFound
	}
	return nil
}

var _ Store = (*Repo)(nil)
