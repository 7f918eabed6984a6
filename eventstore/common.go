package eventstore

import (
	"errors"
)

var (
	ErrEmptyEventsTableName  = errors.New("empty events table name supplied")
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")
	ErrInvalidIdentifier     = errors.New("invalid sql identifier supplied")
	ErrConcurrencyConflict   = errors.New("concurrency error, no rows were affected")

	ErrBuildingQueryFailed         = errors.New("building query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning db row failed")
	ErrBuildingStorableEventFailed = errors.New("building storable event failed")
	ErrAppendingEventFailed        = errors.New("appending the event failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting rows affected failed")
	ErrCreatingSchemaFailed        = errors.New("creating the events schema failed")
	ErrListeningFailed             = errors.New("listening for appended events failed")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number for a "dynamic event stream".
type MaxSequenceNumberUint = uint
