package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName    = "events"
	defaultNotifyChannel     = "events_appended"
	colEventType             = "event_type"
	colOccurredAt            = "occurred_at"
	colPayload               = "payload"
	colMetadata              = "metadata"
	colSequenceNumber        = "sequence_number"
	cteContext               = "context"
	cteVals                  = "vals"
	dialectPostgres          = "postgres"
	aliasMaxSeq              = "max_seq"
	castText                 = "?::text"
	castTimestamp            = "?::timestamp with time zone"
	castJsonb                = "?::jsonb"
	payloadContainsPredicate = colPayload + " @> ?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// EventStore is the PostgreSQL implementation of a dynamic-streams event store.
//
// Every event lives in one table, streams are defined ad hoc by an eventstore.Filter.
// Consistency for appends comes from a conditional insert on the max sequence number of the
// filtered stream, no locks are held between Query and Append.
type EventStore struct {
	db               adapters.DBAdapter
	eventTableName   string
	notifyChannel    string
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
	tracingCollector eventstore.TracingCollector
}

type queryResultRow struct {
	eventType      string
	payload        []byte
	metadata       []byte
	occurredAt     time.Time
	sequenceNumber int64
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolAndReplica creates a new EventStore that sends eventually consistent queries to the replica.
//
// See eventstore.WithEventualConsistency. Appends and strongly consistent queries always hit the primary.
func NewEventStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if primary == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLDBAndReplica is NewEventStoreFromSQLDB with eventually consistent queries going to replica.
func NewEventStoreFromSQLDBAndReplica(primary *sql.DB, replica *sql.DB, options ...Option) (*EventStore, error) {
	if primary == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(primary).WithReplica(replica), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
	es := &EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
		notifyChannel:  defaultNotifyChannel,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// NotifyChannel returns the channel name the insert trigger notifies on.
func (es *EventStore) NotifyChannel() string {
	return es.notifyChannel
}

// Query retrieves events from the Postgres event store based on the provided eventstore.Filter criteria
// and returns them as eventstore.StorableEvents (ordered by sequence number, each carrying its SequenceNumber)
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
//
// With a sequence lower bound on the filter, the returned max sequence number is the one of the last event returned,
// 0 if there was none.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	tracer, ctx := es.startQueryTracing(ctx)
	metrics := es.startQueryMetrics(ctx)

	var empty eventstore.StorableEvents

	sqlQuery, args, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		tracer.finishError(errorTypeBuildQuery, 0)
		metrics.recordError(errorTypeBuildQuery, 0)

		return empty, 0, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, args)
	if queryErr != nil {
		tracer.finishError(errorTypeDatabaseQuery, duration)
		metrics.recordError(errorTypeDatabaseQuery, duration)

		return empty, 0, queryErr
	}
	defer es.closeRows(ctx, rows)

	eventStream, maxSequenceNumber, scanErr := es.processQueryResults(ctx, rows)
	if scanErr != nil {
		tracer.finishError(errorTypeRowScan, duration)
		metrics.recordError(errorTypeRowScan, duration)

		return empty, 0, scanErr
	}

	es.logOperation(
		ctx,
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, es.toMilliseconds(duration),
		logAttrConsistency, eventstore.GetConsistencyLevel(ctx).String(),
	)
	tracer.finishSuccess(eventStream, maxSequenceNumber, duration)
	metrics.recordSuccess(eventStream, duration)

	return eventStream, maxSequenceNumber, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es *EventStore) executeQuery(ctx context.Context, sqlQuery string, args []any) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows closes database rows and logs any errors.
func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// processQueryResults converts database rows to storable events.
func (es *EventStore) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	var empty eventstore.StorableEvents
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		result := queryResultRow{}
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber)
		if rowScanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, rowScanErr)

			return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, buildStorableErr, logAttrEventType, result.eventType)

			return empty, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		event.SequenceNumber = eventstore.MaxSequenceNumberUint(result.sequenceNumber) //nolint:gosec // BIGSERIAL is positive
		eventStream = append(eventStream, event)
		maxSequenceNumber = event.SequenceNumber
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		es.logError(ctx, logMsgScanRowFailed, rowsErr)

		return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowsErr)
	}

	return eventStream, maxSequenceNumber, nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) onto the Postgres event store respecting concurrency constraints
// for this "dynamic event stream" based on the provided eventstore.Filter criteria and the expected MaxSequenceNumberUint.
//
// The provided eventstore.Filter criteria should be the same as the ones used for the Query before making the business decisions.
// A sequence lower bound on the filter is ignored here.
//
// The insert query to append multiple events atomically is heavier than the one built to append a single event.
// In event-sourced applications, one command/request should typically only produce one event.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	tracer, ctx := es.startAppendTracing(ctx, allEvents, expectedMaxSequenceNumber)
	metrics := es.startAppendMetrics(ctx)

	sqlQuery, args, buildQueryErr := es.buildAppendQuery(ctx, allEvents, filter.WithSequenceNumberHigherThan(0), expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		tracer.finishError(errorTypeBuildQuery, 0)
		metrics.recordError(errorTypeBuildQuery, 0)

		return buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeAppendQuery(ctx, sqlQuery, args)
	if execErr != nil {
		tracer.finishError(errorTypeDatabaseExec, duration)
		metrics.recordError(errorTypeDatabaseExec, duration)

		return execErr
	}

	if rowsAffected < int64(len(allEvents)) {
		es.logOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)
		tracer.finishErrorWithAttrs(errorTypeConcurrencyConflict, map[string]string{
			spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
		})
		metrics.recordConcurrencyConflict()

		return eventstore.ErrConcurrencyConflict
	}

	es.logOperation(
		ctx,
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, es.toMilliseconds(duration),
	)
	tracer.finishSuccess(rowsAffected, duration)
	metrics.recordSuccess(len(allEvents), duration)

	return nil
}

// AppendUnconditionally inserts the events without any concurrency check.
//
// It fits append-only facts that no decision depends on, e.g. a review being written
// or a reaction being set with last-writer-wins semantics.
func (es *EventStore) AppendUnconditionally(
	ctx context.Context,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	tracer, ctx := es.startAppendTracing(ctx, allEvents, 0)
	metrics := es.startAppendMetrics(ctx)

	sqlQuery, args, buildQueryErr := es.buildUnconditionalInsertQuery(allEvents)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		tracer.finishError(errorTypeBuildQuery, 0)
		metrics.recordError(errorTypeBuildQuery, 0)

		return buildQueryErr
	}

	_, duration, execErr := es.executeAppendQuery(ctx, sqlQuery, args)
	if execErr != nil {
		tracer.finishError(errorTypeDatabaseExec, duration)
		metrics.recordError(errorTypeDatabaseExec, duration)

		return execErr
	}

	es.logOperation(
		ctx,
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, es.toMilliseconds(duration),
	)
	tracer.finishSuccess(int64(len(allEvents)), duration)
	metrics.recordSuccess(len(allEvents), duration)

	return nil
}

// LatestSequenceNumber returns the highest sequence number in the whole table, 0 for an empty table.
func (es *EventStore) LatestSequenceNumber(ctx context.Context) (eventstore.MaxSequenceNumberUint, error) {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Prepared(true).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0)).
		ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := es.executeQuery(ctx, sqlQuery, args)
	if queryErr != nil {
		return 0, queryErr
	}
	defer es.closeRows(ctx, rows)

	var latest int64
	if rows.Next() {
		if scanErr := rows.Scan(&latest); scanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, scanErr)

			return 0, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowsErr)
	}

	return eventstore.MaxSequenceNumberUint(latest), nil //nolint:gosec // BIGSERIAL is positive
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es *EventStore) buildAppendQuery(
	ctx context.Context,
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, []any, error) {

	var sqlQuery sqlQueryString
	var args []any
	var buildQueryErr error

	switch len(allEvents) {
	case 1:
		sqlQuery, args, buildQueryErr = es.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)

	default:
		sqlQuery, args, buildQueryErr = es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}

	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))

		return "", nil, buildQueryErr
	}

	return sqlQuery, args, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (es *EventStore) executeAppendQuery(ctx context.Context, sqlQuery string, args []any) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionAppend, duration)

	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, duration, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (sqlQueryString, []any, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Prepared(true).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt = es.addWhereClause(filter, selectStmt)

	if filter.SequenceNumberHigherThan() > 0 {
		selectStmt = selectStmt.Where(goqu.C(colSequenceNumber).Gt(int64(filter.SequenceNumberHigherThan()))) //nolint:gosec
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (es *EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, []any, error) {

	builder := goqu.Dialect(dialectPostgres)

	// the CTE computes the current max sequence number of the filtered stream
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt = es.addWhereClause(filter, cteStmt)

	// the SELECT yields the event row only if nobody appended to the stream in the meantime
	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(int64(expectedMaxSequenceNumber))) //nolint:gosec

	insertStmt := builder.
		Insert(es.eventTableName).
		Prepared(true).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (es *EventStore) buildInsertQueryForMultipleEvents(
	events []eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (sqlQueryString, []any, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt = es.addWhereClause(filter, cteStmt)

	valuesStmt := es.buildValuesUnion(builder, events)

	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, colOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, colMetadata)

	insertStmt := builder.
		Insert(es.eventTableName).
		Prepared(true).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsEventType, valsOccurredAt, valsPayload, valsMetadata).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(int64(expectedMaxSequenceNumber))), //nolint:gosec
		)

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (es *EventStore) buildUnconditionalInsertQuery(events []eventstore.StorableEvent) (sqlQueryString, []any, error) {
	rows := make([][]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, []any{
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(es.eventTableName).
		Prepared(true).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		Vals(rows...)

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// buildValuesUnion creates one typed SELECT per event combined with UNION ALL.
func (es *EventStore) buildValuesUnion(builder goqu.DialectWrapper, events []eventstore.StorableEvent) *goqu.SelectDataset {
	var valuesStmt *goqu.SelectDataset

	for _, event := range events {
		stmt := builder.
			Select(
				goqu.L(castText, event.EventType).As(colEventType),
				goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
				goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
				goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
			)

		if valuesStmt == nil {
			valuesStmt = stmt
			continue
		}

		valuesStmt = valuesStmt.UnionAll(stmt)
	}

	return valuesStmt
}

func (es *EventStore) addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	itemsExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0)
		predicateExpressions := make([]goqu.Expression, 0)

		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(
				eventTypeExpressions,
				goqu.Ex{colEventType: eventType},
			)
		}

		// eventTypes must always be filtered with OR ;-)
		eventTypesExpressionList := goqu.Or(eventTypeExpressions...)

		for _, predicate := range item.Predicates() {
			predicateExpressions = append(
				predicateExpressions,
				goqu.L(payloadContainsPredicate, predicate.JSONContainment()),
			)
		}

		var predicatesExpressionList exp.ExpressionList

		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(
			itemsExpressions,
			goqu.And(eventTypesExpressionList, predicatesExpressionList),
		)
	}

	return selectStmt.Where(goqu.Or(itemsExpressions...))
}
