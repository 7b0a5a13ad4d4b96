package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	kafkax "github.com/ariefcatur/go-custom-goods/internal/kafka"
	"github.com/ariefcatur/go-custom-goods/internal/redisx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// validID reports whether id fits a serial column.
func validID(id int) bool {
	return id > 0 && int64(id) <= math.MaxInt32
}

type Store interface {
	ListStages(ctx context.Context) ([]Stage, error)
	ListCustomers(ctx context.Context) ([]CustomerStage, error)
	GetCustomer(ctx context.Context, id int) (CustomerStage, error)
	CreateCustomer(ctx context.Context, in NewCustomer) (CustomerStage, error)
	UpdateCustomer(ctx context.Context, id int, in CustomerUpdate) (Customer, error)
	MoveCustomer(ctx context.Context, id, stageID int) (Move, error)
	DeleteCustomer(ctx context.Context, id int) error
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service owns the customer pipeline. Cache and Events are optional.
type Service struct {
	Store    Store
	Cache    Cache
	Events   Publisher
	CacheTTL time.Duration
	Producer string
	Log      *zap.Logger
}

func (s *Service) ListStages(ctx context.Context) ([]Stage, error) {
	var stages []Stage
	if s.cached(ctx, redisx.KeyStages, &stages) {
		return stages, nil
	}
	stages, err := s.Store.ListStages(ctx)
	if err != nil {
		return nil, apperr.Wrap("Error fetching pipeline stages", err)
	}
	s.remember(ctx, redisx.KeyStages, stages, redisx.TTLStages)
	return stages, nil
}

func (s *Service) ListCustomersWithStage(ctx context.Context) ([]CustomerStage, error) {
	customers, err := s.Store.ListCustomers(ctx)
	if err != nil {
		return nil, apperr.Wrap("Error fetching customers", err)
	}
	return customers, nil
}

// Board returns all customers together with their grouping by stage. The
// cached board is keyed by generation, read before the database, so a
// snapshot that races a write is stored under a generation nobody reads.
func (s *Service) Board(ctx context.Context) (Board, error) {
	var gen int64
	if s.Cache != nil {
		gen = redisx.Generation(ctx, s.Cache, redisx.KeyBoard)
	}
	key := redisx.VersionKey(redisx.KeyBoard, gen)

	var b Board
	if s.cached(ctx, key, &b) {
		return b, nil
	}
	customers, err := s.ListCustomersWithStage(ctx)
	if err != nil {
		return Board{}, err
	}
	b = Board{Customers: customers, ByStage: GroupByStage(customers)}
	if s.Cache != nil && redisx.Generation(ctx, s.Cache, redisx.KeyBoard) == gen {
		s.remember(ctx, key, b, s.CacheTTL)
	}
	return b, nil
}

func (s *Service) CreateCustomer(ctx context.Context, name string, contactInfo *string, stageID *int) (CustomerStage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomerStage{}, apperr.Validation("Name is required")
	}
	if stageID != nil && *stageID == 0 {
		stageID = nil
	}
	if stageID != nil && !validID(*stageID) {
		return CustomerStage{}, errStageNotFound
	}

	cs, err := s.Store.CreateCustomer(ctx, NewCustomer{Name: name, ContactInfo: blankToNil(contactInfo), StageID: stageID})
	if err != nil {
		return CustomerStage{}, apperr.Wrap("Error creating customer", err)
	}
	s.invalidateBoard(ctx)
	s.publish(ctx, EventCustomerCreated, cs.ID, CustomerCreatedPayload{
		CustomerID: cs.ID,
		Name:       cs.Name,
		StageID:    cs.PipelineID,
		Stage:      cs.SectionName,
	})
	return cs, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int, name string, contactInfo, notes *string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, apperr.Validation("Name is required")
	}
	c, err := s.Store.UpdateCustomer(ctx, id, CustomerUpdate{
		Name:        name,
		ContactInfo: blankToNil(contactInfo),
		Notes:       blankToNil(notes),
	})
	if err != nil {
		return Customer{}, apperr.Wrap("Error updating customer", err)
	}
	s.invalidateBoard(ctx)
	return c, nil
}

// MoveCustomer assigns the customer to stageID, replacing any current stage.
func (s *Service) MoveCustomer(ctx context.Context, id, stageID int) (CustomerStage, Stage, error) {
	if stageID == 0 {
		return CustomerStage{}, Stage{}, apperr.Validation("Pipeline ID is required")
	}
	if !validID(stageID) {
		return CustomerStage{}, Stage{}, errStageNotFound
	}
	m, err := s.Store.MoveCustomer(ctx, id, stageID)
	if err != nil {
		return CustomerStage{}, Stage{}, apperr.Wrap("Error moving customer", err)
	}
	s.invalidateBoard(ctx)
	s.publish(ctx, EventCustomerMoved, id, CustomerMovedPayload{
		CustomerID:  id,
		Name:        m.Customer.Name,
		FromStageID: m.FromStageID,
		ToStageID:   m.Stage.ID,
		ToStage:     m.Stage.SectionName,
	})
	return m.Customer, m.Stage, nil
}

// StepCustomer moves the customer one stage left or right. Unassigned
// customers cannot step in either direction.
func (s *Service) StepCustomer(ctx context.Context, id int, dir Direction) (CustomerStage, Stage, error) {
	if !dir.Valid() {
		return CustomerStage{}, Stage{}, apperr.Validation("Direction must be left or right")
	}
	cs, err := s.Store.GetCustomer(ctx, id)
	if err != nil {
		return CustomerStage{}, Stage{}, apperr.Wrap("Error moving customer", err)
	}
	if cs.PipelineID == nil {
		return CustomerStage{}, Stage{}, apperr.Validation("Customer is not assigned to a pipeline stage")
	}
	stages, err := s.ListStages(ctx)
	if err != nil {
		return CustomerStage{}, Stage{}, err
	}
	next, ok := AdjacentStage(stages, *cs.PipelineID, dir)
	if !ok {
		return CustomerStage{}, Stage{}, apperr.Validation("No pipeline stage to the " + string(dir))
	}
	return s.MoveCustomer(ctx, id, next.ID)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int) error {
	if err := s.Store.DeleteCustomer(ctx, id); err != nil {
		return apperr.Wrap("Error deleting customer", err)
	}
	s.invalidateBoard(ctx)
	s.publish(ctx, EventCustomerDeleted, id, CustomerDeletedPayload{CustomerID: id})
	return nil
}

func (s *Service) cached(ctx context.Context, key string, out any) bool {
	if s.Cache == nil {
		return false
	}
	b, ok := s.Cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.Log.Debug("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) remember(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.Cache == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, b, ttl); err != nil {
		s.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) invalidateBoard(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := redisx.Bump(ctx, s.Cache, redisx.KeyBoard); err != nil {
		s.Log.Warn("cache invalidation failed", zap.String("key", redisx.KeyBoard), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType string, customerID int, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: string(PartitionKey(customerID)),
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(PartitionKey(customerID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
