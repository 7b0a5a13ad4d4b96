package pipeline

// Stage is a fixed column of the order pipeline. ID is also its position.
type Stage struct {
	ID          int    `json:"id"`
	SectionName string `json:"section_name"`
}

type Customer struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Notes       *string `json:"notes"`
}

// CustomerStage is a customer joined with its current stage. PipelineID and
// SectionName are nil for unassigned customers.
type CustomerStage struct {
	Customer
	PipelineID  *int    `json:"pipeline_id"`
	SectionName *string `json:"section_name"`
}

// Board is the kanban view: every customer, plus the same customers keyed
// by stage id or UnassignedKey.
type Board struct {
	Customers []CustomerStage            `json:"customers"`
	ByStage   map[string][]CustomerStage `json:"customersByStage"`
}

type NewCustomer struct {
	Name        string
	ContactInfo *string
	StageID     *int
}

type CustomerUpdate struct {
	Name        string
	ContactInfo *string
	Notes       *string
}

// Move is the result of reassigning a customer. FromStageID is nil when the
// customer was unassigned before.
type Move struct {
	Customer    CustomerStage
	Stage       Stage
	FromStageID *int
}
