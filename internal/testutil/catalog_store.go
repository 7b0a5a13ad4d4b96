package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/catalog"
)

// CatalogStore keeps both listing kinds in memory. Mutations counts every
// successful write so tests can assert nothing was stored.
type CatalogStore struct {
	mu      sync.Mutex
	premade map[int]catalog.PremadeListing
	custom  map[int]catalog.CustomListing
	nextID  int

	Today     time.Time
	Err       error
	Mutations int
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		premade: map[int]catalog.PremadeListing{},
		custom:  map[int]catalog.CustomListing{},
		nextID:  1,
		Today:   time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
}

// SeedPremade inserts a listing with an explicit date and returns its id.
func (s *CatalogStore) SeedPremade(title string, price float64, listed time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.premade[id] = catalog.PremadeListing{ID: id, Title: title, Price: price, DateListed: listed}
	return id
}

func (s *CatalogStore) ListPremade(ctx context.Context, by catalog.Sort) ([]catalog.PremadeListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []catalog.PremadeListing{}
	for _, l := range s.premade {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if by == catalog.SortPrice {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID < b.ID
		}
		if !a.DateListed.Equal(b.DateListed) {
			return a.DateListed.After(b.DateListed)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (s *CatalogStore) CreatePremade(ctx context.Context, in catalog.ListingInput) (catalog.PremadeListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return catalog.PremadeListing{}, s.Err
	}
	l := catalog.PremadeListing{ID: s.nextID, Title: in.Title, Description: in.Description, ImageLink: in.ImageLink, Price: in.Price, DateListed: s.Today}
	s.nextID++
	s.premade[l.ID] = l
	s.Mutations++
	return l, nil
}

func (s *CatalogStore) UpdatePremade(ctx context.Context, id int, in catalog.ListingInput) (catalog.PremadeListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return catalog.PremadeListing{}, s.Err
	}
	l, ok := s.premade[id]
	if !ok {
		return catalog.PremadeListing{}, apperr.NotFound("Listing not found")
	}
	l.Title, l.Description, l.ImageLink, l.Price = in.Title, in.Description, in.ImageLink, in.Price
	s.premade[id] = l
	s.Mutations++
	return l, nil
}

func (s *CatalogStore) DeletePremade(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.premade[id]; !ok {
		return apperr.NotFound("Listing not found")
	}
	delete(s.premade, id)
	s.Mutations++
	return nil
}

func (s *CatalogStore) ListCustom(ctx context.Context) ([]catalog.CustomListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []catalog.CustomListing{}
	for _, l := range s.custom {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CatalogStore) CreateCustom(ctx context.Context, in catalog.ListingInput) (catalog.CustomListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return catalog.CustomListing{}, s.Err
	}
	l := catalog.CustomListing{ID: s.nextID, Title: in.Title, Description: in.Description, ImageLink: in.ImageLink, StartingPrice: in.Price}
	s.nextID++
	s.custom[l.ID] = l
	s.Mutations++
	return l, nil
}

func (s *CatalogStore) UpdateCustom(ctx context.Context, id int, in catalog.ListingInput) (catalog.CustomListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return catalog.CustomListing{}, s.Err
	}
	if _, ok := s.custom[id]; !ok {
		return catalog.CustomListing{}, apperr.NotFound("Listing not found")
	}
	l := catalog.CustomListing{ID: id, Title: in.Title, Description: in.Description, ImageLink: in.ImageLink, StartingPrice: in.Price}
	s.custom[id] = l
	s.Mutations++
	return l, nil
}

func (s *CatalogStore) DeleteCustom(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.custom[id]; !ok {
		return apperr.NotFound("Listing not found")
	}
	delete(s.custom, id)
	s.Mutations++
	return nil
}

var _ catalog.Store = (*CatalogStore)(nil)
