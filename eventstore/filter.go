package eventstore

import (
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter is the engine-agnostic description of a dynamic event stream.
//
// Items are OR-ed together. A Filter without items matches every event.
type Filter struct {
	items                    []FilterItem
	sequenceNumberHigherThan MaxSequenceNumberUint
}

// Items returns the OR-ed items.
func (f Filter) Items() []FilterItem {
	return f.items
}

// SequenceNumberHigherThan returns the exclusive lower sequence bound, 0 means unbounded.
func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// WithSequenceNumberHigherThan returns a copy of the Filter restricted to events appended after sequenceNumber.
//
// It is meant for tailing reads. Append ignores the bound when it checks for conflicts.
func (f Filter) WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) Filter {
	f.sequenceNumberHigherThan = sequenceNumber

	return f
}

/***** FilterItem *****/

// FilterItem is one OR branch of a Filter.
type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

/***** FilterPredicate *****/

// FilterPredicate matches a top-level key of the event payload against a JSON scalar.
type FilterPredicate struct {
	key     FilterKeyString
	val     FilterValString
	literal string
}

// P builds a predicate matching a JSON string value.
func P(key FilterKeyString, val FilterValString) FilterPredicate {
	if val == "" {
		return FilterPredicate{key: key}
	}

	literal, _ := jsoniter.ConfigFastest.MarshalToString(val)

	return FilterPredicate{key: key, val: val, literal: literal}
}

// PInt builds a predicate matching a JSON number value.
func PInt(key FilterKeyString, val int64) FilterPredicate {
	s := strconv.FormatInt(val, 10)

	return FilterPredicate{key: key, val: s, literal: s}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

// JSONLiteral returns the value encoded as a JSON scalar, e.g. "abc" (quoted) or 42.
func (fp FilterPredicate) JSONLiteral() string {
	return fp.literal
}

// JSONContainment returns a one-key JSON object usable for jsonb containment, e.g. {"MovieID":42}.
func (fp FilterPredicate) JSONContainment() string {
	key, _ := jsoniter.ConfigFastest.MarshalToString(fp.key)

	return "{" + key + ":" + fp.literal + "}"
}

/***** FilterBuilder *****/

// FilterBuilder is the only way to build a Filter. Its step interfaces admit the combinations that
// make sense for a decision or projection query, for example:
//
//	BuildEventFilter().
//		Matching().
//		AnyEventTypeOf("ReviewWritten", "ReactionSet", "ReactionCleared").
//		AndAnyPredicateOf(PInt("MovieID", 603)).
//		Finalize()
//
// Event types inside one FilterItem are OR-ed, predicates are OR-ed or AND-ed as chosen, and the
// event types are AND-ed with the predicates. OrMatching starts the next FilterItem.
type FilterBuilder interface {
	Matching() EmptyFilterItemBuilder
	MatchingAnyEvent() Filter
}

// EmptyFilterItemBuilder starts a FilterItem with event types or predicates.
// Empty values are dropped, the rest is sorted and deduplicated.
type EmptyFilterItemBuilder interface {
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

// FilterItemBuilderLackingPredicates has event types and may still get predicates.
type FilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

// FilterItemBuilderLackingEventTypes has predicates and may still get event types.
type FilterItemBuilderLackingEventTypes interface {
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

// CompletedFilterItemBuilder closes the current FilterItem.
type CompletedFilterItemBuilder interface {
	OrMatching() EmptyFilterItemBuilder
	Finalize() Filter
}

// filterBuilder is a value type, every step works on a copy so partially built filters can be reused.
type filterBuilder struct {
	filter  Filter
	current FilterItem
}

// BuildEventFilter starts a Filter, finish it with Finalize or MatchingAnyEvent.
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.current = FilterItem{}

	return fb
}

func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingPredicates {

	fb.current.eventTypes = normalized(
		fb.current.eventTypes,
		append([]FilterEventTypeString{eventType}, eventTypes...),
		func(e FilterEventTypeString) bool { return e == "" },
		strings.Compare,
	)

	return fb
}

func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.current.predicates = normalized(
		fb.current.predicates,
		append([]FilterPredicate{predicate}, predicates...),
		func(p FilterPredicate) bool { return p.key == "" || p.val == "" },
		comparePredicates,
	)

	return fb
}

func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.current.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.current)
	fb.current = FilterItem{}

	return fb
}

// MatchingAnyEvent returns the Filter without items, which matches every event.
func (fb filterBuilder) MatchingAnyEvent() Filter {
	return fb.filter
}

func (fb filterBuilder) Finalize() Filter {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.current)

	return fb.filter
}

// normalized merges added into existing without touching existing's backing array.
func normalized[T comparable](existing, added []T, drop func(T) bool, compare func(a, b T) int) []T {
	merged := slices.DeleteFunc(append(slices.Clone(existing), added...), drop)
	slices.SortFunc(merged, compare)

	return slices.Clip(slices.Compact(merged))
}

func comparePredicates(a, b FilterPredicate) int {
	if c := strings.Compare(a.key, b.key); c != 0 {
		return c
	}

	return strings.Compare(a.literal, b.literal)
}
