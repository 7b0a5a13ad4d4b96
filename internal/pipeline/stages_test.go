package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(i int) *int { return &i }

func TestAdjacentStage(t *testing.T) {
	stages := []Stage{{ID: 3, SectionName: "Production"}, {ID: 1, SectionName: "Intake"}, {ID: 2, SectionName: "Payment"}}

	tests := []struct {
		name    string
		current int
		dir     Direction
		want    int
		ok      bool
	}{
		{"right from first", 1, Right, 2, true},
		{"left from middle", 2, Left, 1, true},
		{"right from middle", 2, Right, 3, true},
		{"left from first", 1, Left, 0, false},
		{"right from last", 3, Right, 0, false},
		{"unknown current", 9, Left, 0, false},
		{"bad direction", 2, Direction("up"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AdjacentStage(stages, tt.current, tt.dir)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}

	assert.Equal(t, 3, stages[0].ID, "input order must be preserved")
}

func TestAdjacentStageGaps(t *testing.T) {
	stages := []Stage{{ID: 1}, {ID: 5}, {ID: 9}}

	got, ok := AdjacentStage(stages, 5, Right)
	assert.True(t, ok)
	assert.Equal(t, 9, got.ID)
}

func TestGroupByStage(t *testing.T) {
	customers := []CustomerStage{
		{Customer: Customer{ID: 1, Name: "Ana"}, PipelineID: intp(2)},
		{Customer: Customer{ID: 2, Name: "Ben"}},
		{Customer: Customer{ID: 3, Name: "Cy"}, PipelineID: intp(2)},
		{Customer: Customer{ID: 4, Name: "Di"}, PipelineID: intp(1)},
	}

	got := GroupByStage(customers)

	assert.Len(t, got, 3)
	assert.Equal(t, []int{1, 3}, ids(got["2"]))
	assert.Equal(t, []int{4}, ids(got["1"]))
	assert.Equal(t, []int{2}, ids(got[UnassignedKey]))
	assert.Empty(t, GroupByStage(nil))
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal("Completed"))
	assert.True(t, Terminal("Cancelled"))
	assert.False(t, Terminal("Shipping"))
}

func ids(cs []CustomerStage) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
