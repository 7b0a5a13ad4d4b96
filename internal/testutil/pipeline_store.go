// Package testutil holds in-memory stand-ins for the Postgres, Redis and
// Kafka collaborators.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
)

// PipelineStore mimics the pipeline tables, including the one-stage-per-
// customer constraint and the delete cascade. Set Err to make every call
// fail.
type PipelineStore struct {
	mu          sync.Mutex
	stages      []pipeline.Stage
	customers   map[int]pipeline.Customer
	assignments map[int]int
	nextID      int

	Err   error
	Calls int
}

func NewPipelineStore(stages ...pipeline.Stage) *PipelineStore {
	return &PipelineStore{
		stages:      stages,
		customers:   map[int]pipeline.Customer{},
		assignments: map[int]int{},
		nextID:      1,
	}
}

// DefaultStages is the seeded stage set.
func DefaultStages() []pipeline.Stage {
	names := []string{"Intake", "Payment", "Production", "Shipping", "Delivery", "Completed", "Cancelled"}
	out := make([]pipeline.Stage, len(names))
	for i, n := range names {
		out[i] = pipeline.Stage{ID: i + 1, SectionName: n}
	}
	return out
}

// AssignmentRows returns the number of assignment rows for a customer.
func (s *PipelineStore) AssignmentRows(customerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[customerID]; ok {
		return 1
	}
	return 0
}

// OrphanAssignments counts assignments whose customer no longer exists.
func (s *PipelineStore) OrphanAssignments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for cid := range s.assignments {
		if _, ok := s.customers[cid]; !ok {
			n++
		}
	}
	return n
}

func (s *PipelineStore) begin() error {
	s.Calls++
	return s.Err
}

func (s *PipelineStore) stage(id int) (pipeline.Stage, bool) {
	for _, st := range s.stages {
		if st.ID == id {
			return st, true
		}
	}
	return pipeline.Stage{}, false
}

func (s *PipelineStore) joined(c pipeline.Customer) pipeline.CustomerStage {
	cs := pipeline.CustomerStage{Customer: c}
	if sid, ok := s.assignments[c.ID]; ok {
		st, _ := s.stage(sid)
		id, name := st.ID, st.SectionName
		cs.PipelineID = &id
		cs.SectionName = &name
	}
	return cs
}

func (s *PipelineStore) ListStages(ctx context.Context) ([]pipeline.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return nil, err
	}
	out := append([]pipeline.Stage(nil), s.stages...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *PipelineStore) ListCustomers(ctx context.Context) ([]pipeline.CustomerStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []pipeline.CustomerStage{}
	for _, id := range ids {
		out = append(out, s.joined(s.customers[id]))
	}
	return out, nil
}

func (s *PipelineStore) GetCustomer(ctx context.Context, id int) (pipeline.CustomerStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return pipeline.CustomerStage{}, err
	}
	c, ok := s.customers[id]
	if !ok {
		return pipeline.CustomerStage{}, apperr.NotFound("Customer not found")
	}
	return s.joined(c), nil
}

func (s *PipelineStore) CreateCustomer(ctx context.Context, in pipeline.NewCustomer) (pipeline.CustomerStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return pipeline.CustomerStage{}, err
	}
	if in.StageID != nil {
		if _, ok := s.stage(*in.StageID); !ok {
			return pipeline.CustomerStage{}, apperr.Validation("Pipeline stage does not exist")
		}
	}
	c := pipeline.Customer{ID: s.nextID, Name: in.Name, ContactInfo: in.ContactInfo}
	s.nextID++
	s.customers[c.ID] = c
	if in.StageID != nil {
		s.assignments[c.ID] = *in.StageID
	}
	return s.joined(c), nil
}

func (s *PipelineStore) UpdateCustomer(ctx context.Context, id int, in pipeline.CustomerUpdate) (pipeline.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return pipeline.Customer{}, err
	}
	if _, ok := s.customers[id]; !ok {
		return pipeline.Customer{}, apperr.NotFound("Customer not found")
	}
	c := pipeline.Customer{ID: id, Name: in.Name, ContactInfo: in.ContactInfo, Notes: in.Notes}
	s.customers[id] = c
	return c, nil
}

func (s *PipelineStore) MoveCustomer(ctx context.Context, id, stageID int) (pipeline.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return pipeline.Move{}, err
	}
	c, ok := s.customers[id]
	if !ok {
		return pipeline.Move{}, apperr.NotFound("Customer not found")
	}
	st, ok := s.stage(stageID)
	if !ok {
		return pipeline.Move{}, apperr.Validation("Pipeline stage does not exist")
	}
	var from *int
	if prev, ok := s.assignments[id]; ok {
		from = &prev
	}
	s.assignments[id] = stageID
	return pipeline.Move{Customer: s.joined(c), Stage: st, FromStageID: from}, nil
}

func (s *PipelineStore) DeleteCustomer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	if _, ok := s.customers[id]; !ok {
		return apperr.NotFound("Customer not found")
	}
	delete(s.customers, id)
	delete(s.assignments, id)
	return nil
}

var _ pipeline.Store = (*PipelineStore)(nil)
