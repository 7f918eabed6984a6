package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

//nolint:funlen
func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() eventstore.Filter
		validate func(t *testing.T, filter eventstore.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Empty(t, f.Items())
				assert.Equal(t, uint(0), f.SequenceNumberHigherThan())
			},
		},
		{
			name: "single_event_type",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ReviewWritten").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"ReviewWritten"}, f.Items()[0].EventTypes())
				assert.Empty(t, f.Items()[0].Predicates())
			},
		},
		{
			name: "event_types_with_any_predicate",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ReactionSet", "ReactionCleared").
					AndAnyPredicateOf(eventstore.PInt("MovieID", 603)).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				item := f.Items()[0]
				assert.Equal(t, []string{"ReactionCleared", "ReactionSet"}, item.EventTypes())
				assert.Len(t, item.Predicates(), 1)
				assert.False(t, item.AllPredicatesMustMatch())
			},
		},
		{
			name: "all_predicates_then_event_types",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AllPredicatesOf(eventstore.P("UserID", "u-1"), eventstore.P("ReviewID", "r-1")).
					AndAnyEventTypeOf("ReactionSet").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				item := f.Items()[0]
				assert.True(t, item.AllPredicatesMustMatch())
				assert.Equal(t, "ReviewID", item.Predicates()[0].Key())
				assert.Equal(t, "UserID", item.Predicates()[1].Key())
				assert.Equal(t, []string{"ReactionSet"}, item.EventTypes())
			},
		},
		{
			name: "or_matching_creates_multiple_items",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ReviewWritten").
					OrMatching().
					AnyEventTypeOf("ReactionSet").
					AndAnyPredicateOf(eventstore.P("UserID", "u-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 2)
				assert.Equal(t, []string{"ReviewWritten"}, f.Items()[0].EventTypes())
				assert.Equal(t, []string{"ReactionSet"}, f.Items()[1].EventTypes())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_InputSanitization(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ReactionSet", "", "ReviewWritten", "ReactionSet").
		AndAnyPredicateOf(
			eventstore.P("UserID", "u-2"),
			eventstore.P("", "orphan"),
			eventstore.P("UserID", ""),
			eventstore.P("UserID", "u-1"),
			eventstore.P("UserID", "u-2"),
		).
		Finalize()

	// assert
	item := filter.Items()[0]
	assert.Equal(t, []string{"ReactionSet", "ReviewWritten"}, item.EventTypes())
	assert.Equal(t, []eventstore.FilterPredicate{eventstore.P("UserID", "u-1"), eventstore.P("UserID", "u-2")}, item.Predicates())
}

func Test_FilterPredicate_JSONLiterals(t *testing.T) {
	// act
	str := eventstore.P("ReviewID", `r"1`)
	num := eventstore.PInt("MovieID", 603)

	// assert
	assert.Equal(t, `"r\"1"`, str.JSONLiteral())
	assert.Equal(t, `{"ReviewID":"r\"1"}`, str.JSONContainment())
	assert.Equal(t, "603", num.Val())
	assert.Equal(t, "603", num.JSONLiteral())
	assert.Equal(t, `{"MovieID":603}`, num.JSONContainment())
}

func Test_Filter_WithSequenceNumberHigherThan_ReturnsCopy(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ReviewWritten").Finalize()

	// act
	tail := base.WithSequenceNumberHigherThan(42)

	// assert
	assert.Equal(t, uint(0), base.SequenceNumberHigherThan())
	assert.Equal(t, uint(42), tail.SequenceNumberHigherThan())
	assert.Equal(t, base.Items(), tail.Items())
}

func Test_FilterBuilder_BranchesDoNotShareState(t *testing.T) {
	// arrange
	started := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ReviewWritten")

	// act
	first := started.AndAnyPredicateOf(eventstore.PInt("MovieID", 1)).Finalize()
	second := started.AndAnyPredicateOf(eventstore.PInt("MovieID", 2)).Finalize()

	// assert
	assert.Equal(t, "1", first.Items()[0].Predicates()[0].Val())
	assert.Equal(t, "2", second.Items()[0].Predicates()[0].Val())
}
