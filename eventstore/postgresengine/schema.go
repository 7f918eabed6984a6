package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(identifier string) bool {
	return len(identifier) <= 63 && identifierPattern.MatchString(identifier)
}

// EnsureSchema creates the events table, its indexes and the statement-level notify trigger if they are missing.
//
// It is idempotent and safe to call on every start. The trigger sends one empty notification per INSERT statement
// on the configured notify channel, PGXListener and PQListener wake up on it.
func (es *EventStore) EnsureSchema(ctx context.Context) error {
	start := time.Now()

	for _, statement := range es.schemaStatements() {
		if _, err := es.db.Exec(ctx, statement); err != nil {
			es.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, statement)

			return errors.Join(eventstore.ErrCreatingSchemaFailed, err)
		}
	}

	duration := time.Since(start)
	es.logQueryWithDuration(ctx, es.eventTableName, logActionSchema, duration)
	es.logOperation(ctx, logMsgSchemaEnsured, logAttrTable, es.eventTableName, logAttrChannel, es.notifyChannel)

	return nil
}

func (es *EventStore) schemaStatements() []string {
	table := es.eventTableName
	function := table + "_notify_appended"
	trigger := table + "_appended"

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sequence_number BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
			payload JSONB NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_event_type_idx ON %s (event_type)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_payload_idx ON %s USING GIN (payload jsonb_path_ops)`, table, table),
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('%s', '');
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`, function, es.notifyChannel),
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
		fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT ON %s FOR EACH STATEMENT EXECUTE FUNCTION %s()`, trigger, table, function),
	}
}
