package pipeline

import (
	"sort"
	"strconv"
)

const UnassignedKey = "unassigned"

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

func (d Direction) Valid() bool { return d == Left || d == Right }

// AdjacentStage returns the neighbour of currentID in ascending id order.
// A current id that is not a known stage has no neighbours.
func AdjacentStage(stages []Stage, currentID int, dir Direction) (Stage, bool) {
	ordered := make([]Stage, len(stages))
	copy(ordered, stages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	idx := -1
	for i, s := range ordered {
		if s.ID == currentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Stage{}, false
	}

	switch dir {
	case Left:
		idx--
	case Right:
		idx++
	default:
		return Stage{}, false
	}
	if idx < 0 || idx >= len(ordered) {
		return Stage{}, false
	}
	return ordered[idx], true
}

// StageKey is the customersByStage key for a stage reference.
func StageKey(stageID *int) string {
	if stageID == nil {
		return UnassignedKey
	}
	return strconv.Itoa(*stageID)
}

// GroupByStage buckets customers by StageKey, keeping input order inside
// each bucket.
func GroupByStage(customers []CustomerStage) map[string][]CustomerStage {
	out := make(map[string][]CustomerStage)
	for _, c := range customers {
		k := StageKey(c.PipelineID)
		out[k] = append(out[k], c)
	}
	return out
}

// Terminal reports whether a stage closes the order.
func Terminal(sectionName string) bool {
	return sectionName == "Completed" || sectionName == "Cancelled"
}
