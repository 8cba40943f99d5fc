package comments

import "github.com/gmorris/prwatch/internal/domain"

// ActorFilter narrows the collection by author class.
type ActorFilter int

const (
	ActorAll ActorFilter = iota
	ActorAutomated
	ActorHumans
)

// StateFilter narrows the collection by discussion state.
type StateFilter int

const (
	StateAll StateFilter = iota

	// StateUnresolved keeps entities that are neither resolved nor
	// answered by a human.
	StateUnresolved

	// StateUnanswered keeps entities with no replies at all.
	StateUnanswered
)

// FilterOptions selects which entities survive filtering.
type FilterOptions struct {
	Actor ActorFilter
	State StateFilter
}

// Filter applies the selected filters and returns a new collection in the
// same order. The input is never modified.
func Filter(list []domain.Comment, opts FilterOptions) []domain.Comment {
	filtered := make([]domain.Comment, 0, len(list))
	for _, c := range list {
		if !matchesActor(c, opts.Actor) {
			continue
		}
		if !matchesState(c, opts.State) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func matchesActor(c domain.Comment, actor ActorFilter) bool {
	switch actor {
	case ActorAutomated:
		return c.IsAutomated
	case ActorHumans:
		return !c.IsAutomated
	default:
		return true
	}
}

func matchesState(c domain.Comment, state StateFilter) bool {
	switch state {
	case StateUnresolved:
		return !(c.IsResolved || c.HasHumanReply)
	case StateUnanswered:
		return !c.HasAnyReply
	default:
		return true
	}
}
