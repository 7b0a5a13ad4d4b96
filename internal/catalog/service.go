package catalog

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/redisx"
	"go.uber.org/zap"
)

type Store interface {
	ListPremade(ctx context.Context, sort Sort) ([]PremadeListing, error)
	CreatePremade(ctx context.Context, in ListingInput) (PremadeListing, error)
	UpdatePremade(ctx context.Context, id int, in ListingInput) (PremadeListing, error)
	DeletePremade(ctx context.Context, id int) error

	ListCustom(ctx context.Context) ([]CustomListing, error)
	CreateCustom(ctx context.Context, in ListingInput) (CustomListing, error)
	UpdateCustom(ctx context.Context, id int, in ListingInput) (CustomListing, error)
	DeleteCustom(ctx context.Context, id int) error
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// MaxPrice is the largest value a NUMERIC(10,2) price column holds.
const MaxPrice = 99999999.99

// Draft is an unvalidated listing write as received from a client.
type Draft struct {
	Title       string
	Description *string
	ImageLink   *string
	Price       *float64
}

// Service serves the pre-made and custom catalogs. The two kinds share no
// rows and no cache keys.
type Service struct {
	Store    Store
	Cache    Cache
	CacheTTL time.Duration
	Log      *zap.Logger
}

func (s *Service) ListPremade(ctx context.Context, sort Sort) ([]PremadeListing, error) {
	gen := s.generation(ctx, redisx.KeyPremadeGroup)
	key := redisx.VersionKey(redisx.PremadeKey(string(sort)), gen)
	var out []PremadeListing
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	out, err := s.Store.ListPremade(ctx, sort)
	if err != nil {
		return nil, apperr.Wrap("Error fetching listings", err)
	}
	s.remember(ctx, redisx.KeyPremadeGroup, gen, key, out)
	return out, nil
}

func (s *Service) CreatePremade(ctx context.Context, d Draft) (PremadeListing, error) {
	in, err := validate(d, "Price")
	if err != nil {
		return PremadeListing{}, err
	}
	l, err := s.Store.CreatePremade(ctx, in)
	if err != nil {
		return PremadeListing{}, apperr.Wrap("Error creating listing", err)
	}
	s.invalidate(ctx, redisx.KeyPremadeGroup)
	return l, nil
}

func (s *Service) UpdatePremade(ctx context.Context, id int, d Draft) (PremadeListing, error) {
	in, err := validate(d, "Price")
	if err != nil {
		return PremadeListing{}, err
	}
	l, err := s.Store.UpdatePremade(ctx, id, in)
	if err != nil {
		return PremadeListing{}, apperr.Wrap("Error updating listing", err)
	}
	s.invalidate(ctx, redisx.KeyPremadeGroup)
	return l, nil
}

func (s *Service) DeletePremade(ctx context.Context, id int) error {
	if err := s.Store.DeletePremade(ctx, id); err != nil {
		return apperr.Wrap("Error deleting listing", err)
	}
	s.invalidate(ctx, redisx.KeyPremadeGroup)
	return nil
}

func (s *Service) ListCustom(ctx context.Context) ([]CustomListing, error) {
	gen := s.generation(ctx, redisx.KeyCustom)
	key := redisx.VersionKey(redisx.KeyCustom, gen)
	var out []CustomListing
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	out, err := s.Store.ListCustom(ctx)
	if err != nil {
		return nil, apperr.Wrap("Error fetching custom listings", err)
	}
	s.remember(ctx, redisx.KeyCustom, gen, key, out)
	return out, nil
}

func (s *Service) CreateCustom(ctx context.Context, d Draft) (CustomListing, error) {
	in, err := validate(d, "Starting price")
	if err != nil {
		return CustomListing{}, err
	}
	l, err := s.Store.CreateCustom(ctx, in)
	if err != nil {
		return CustomListing{}, apperr.Wrap("Error creating custom listing", err)
	}
	s.invalidate(ctx, redisx.KeyCustom)
	return l, nil
}

func (s *Service) UpdateCustom(ctx context.Context, id int, d Draft) (CustomListing, error) {
	in, err := validate(d, "Starting price")
	if err != nil {
		return CustomListing{}, err
	}
	l, err := s.Store.UpdateCustom(ctx, id, in)
	if err != nil {
		return CustomListing{}, apperr.Wrap("Error updating custom listing", err)
	}
	s.invalidate(ctx, redisx.KeyCustom)
	return l, nil
}

func (s *Service) DeleteCustom(ctx context.Context, id int) error {
	if err := s.Store.DeleteCustom(ctx, id); err != nil {
		return apperr.Wrap("Error deleting custom listing", err)
	}
	s.invalidate(ctx, redisx.KeyCustom)
	return nil
}

// validate checks a draft before any store access. Description and image
// link are stored exactly as given.
func validate(d Draft, priceLabel string) (ListingInput, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return ListingInput{}, apperr.Validation("Title is required")
	}
	if d.Price == nil {
		return ListingInput{}, apperr.Validation(priceLabel + " is required")
	}
	if *d.Price < 0 {
		return ListingInput{}, apperr.Validation(priceLabel + " must not be negative")
	}
	if *d.Price > MaxPrice {
		return ListingInput{}, apperr.Validation(priceLabel + " must be at most 99999999.99")
	}
	if cents := *d.Price * 100; math.Abs(cents-math.Round(cents)) > 1e-4 {
		return ListingInput{}, apperr.Validation(priceLabel + " must have at most 2 decimal places")
	}
	return ListingInput{
		Title:       title,
		Description: d.Description,
		ImageLink:   d.ImageLink,
		Price:       *d.Price,
	}, nil
}

func (s *Service) cached(ctx context.Context, key string, out any) bool {
	if s.Cache == nil {
		return false
	}
	b, ok := s.Cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (s *Service) generation(ctx context.Context, group string) int64 {
	if s.Cache == nil {
		return 0
	}
	return redisx.Generation(ctx, s.Cache, group)
}

// remember stores v unless group moved past gen while v was being read.
func (s *Service) remember(ctx context.Context, group string, gen int64, key string, v any) {
	if s.Cache == nil || s.CacheTTL <= 0 || s.generation(ctx, group) != gen {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, b, s.CacheTTL); err != nil {
		s.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, group string) {
	if s.Cache == nil {
		return
	}
	if err := redisx.Bump(ctx, s.Cache, group); err != nil {
		s.Log.Warn("cache invalidation failed", zap.String("group", group), zap.Error(err))
	}
}
