package redisbackend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

const (
	defaultKeyPrefix = "reviewfeed"
	defaultChannel   = "reviewfeed:changes"

	logMsgSubscribed     = "redisbackend: subscribed to change channel"
	logMsgBadChangeEvent = "redisbackend: ignoring change message"
	logAttrChannel       = "channel"
	logAttrPayload       = "payload"
)

var (
	// ErrNilClient is returned by New without a client.
	ErrNilClient = errors.New("redis client must not be nil")

	errSnapshotShape = errors.New("unexpected snapshot script result")
)

// Backend stores review documents and reaction slots in Redis hashes.
type Backend struct {
	client    redis.UniversalClient
	keyPrefix string
	channel   string
	hub       *reviewstore.Hub
	logger    eventstore.ContextualLogger
}

// Option configures a Backend.
type Option func(*Backend)

// WithKeyPrefix sets the prefix of every key.
func WithKeyPrefix(prefix string) Option {
	return func(b *Backend) {
		if prefix != "" {
			b.keyPrefix = prefix
		}
	}
}

// WithChannel sets the pub/sub channel carrying changed movie ids.
func WithChannel(channel string) Option {
	return func(b *Backend) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithContextualLogger sets the logger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// New creates a Backend on client.
func New(client redis.UniversalClient, options ...Option) (*Backend, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	b := &Backend{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		channel:   defaultChannel,
	}

	for _, option := range options {
		option(b)
	}

	b.hub = reviewstore.NewHub(b.load, b.logger)

	return b, nil
}

// SubscribeReviews implements reviewstore.Backend.
func (b *Backend) SubscribeReviews(
	ctx context.Context,
	movieID core.MovieID,
	onChange func([]reviewstore.RawRecord),
) (func(), error) {
	return b.hub.Subscribe(ctx, movieID, onChange)
}

// PushReview stores the document under a new time-ordered id.
func (b *Backend) PushReview(
	ctx context.Context,
	movieID core.MovieID,
	document reviewstore.Document,
) (core.ReviewID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	// Reactions live in their own hash.
	document.Reactions = nil

	data, err := reviewstore.MarshalDocument(document)
	if err != nil {
		return "", err
	}

	reviewID := id.String()

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, b.reviewsKey(movieID), reviewID, data)
		pipe.Publish(ctx, b.channel, movieID.String())

		return nil
	})
	if err != nil {
		return "", err
	}

	b.hub.Notify(movieID)

	return reviewID, nil
}

// ReadReaction returns the stored emoji or "".
func (b *Backend) ReadReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
) (string, error) {
	symbol, err := b.client.HGet(ctx, b.reactionsKey(movieID, reviewID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return symbol, nil
}

// WriteReaction sets or, for "", deletes the user's field.
func (b *Backend) WriteReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
	symbol string,
) error {
	key := b.reactionsKey(movieID, reviewID)

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if symbol == "" {
			pipe.HDel(ctx, key, userID)
		} else {
			pipe.HSet(ctx, key, userID, symbol)
		}

		pipe.Publish(ctx, b.channel, movieID.String())

		return nil
	})
	if err != nil {
		return err
	}

	b.hub.Notify(movieID)

	return nil
}

// snapshotScript returns id, document and the flat reaction hash of every review of a movie. It
// runs atomically, so an emission never mixes states before and after a write.
var snapshotScript = redis.NewScript(`
local reviews = redis.call('HGETALL', KEYS[1])
local out = {}
for i = 1, #reviews, 2 do
	local id = reviews[i]
	out[#out + 1] = id
	out[#out + 1] = reviews[i + 1]
	out[#out + 1] = redis.call('HGETALL', ARGV[1] .. id .. ARGV[2])
end
return out
`)

// load reads the reviews of a movie with their reactions as of one point in time.
func (b *Backend) load(ctx context.Context, movieID core.MovieID) ([]reviewstore.RawRecord, error) {
	keyPrefix, keySuffix := b.reactionsKeyParts(movieID)

	result, err := snapshotScript.Run(ctx, b.client, []string{b.reviewsKey(movieID)}, keyPrefix, keySuffix).Slice()
	if err != nil {
		return nil, err
	}

	reviews, reactions, err := parseSnapshot(result)
	if err != nil {
		return nil, err
	}

	return composeRecords(reviews, reactions), nil
}

// parseSnapshot splits the script result into documents and reaction hashes by review id.
func parseSnapshot(result []any) (map[string]string, map[string]map[string]string, error) {
	if len(result)%3 != 0 {
		return nil, nil, fmt.Errorf("%w: %d values", errSnapshotShape, len(result))
	}

	reviews := make(map[string]string, len(result)/3)
	reactions := make(map[string]map[string]string, len(result)/3)

	for i := 0; i < len(result); i += 3 {
		reviewID, idOK := result[i].(string)
		document, documentOK := result[i+1].(string)
		flat, flatOK := result[i+2].([]any)
		if !idOK || !documentOK || !flatOK || len(flat)%2 != 0 {
			return nil, nil, fmt.Errorf("%w: entry %d", errSnapshotShape, i/3)
		}

		reviews[reviewID] = document

		slots := make(map[string]string, len(flat)/2)
		for j := 0; j < len(flat); j += 2 {
			userID, userOK := flat[j].(string)
			symbol, symbolOK := flat[j+1].(string)
			if !userOK || !symbolOK {
				return nil, nil, fmt.Errorf("%w: reactions of %s", errSnapshotShape, reviewID)
			}

			slots[userID] = symbol
		}

		reactions[reviewID] = slots
	}

	return reviews, reactions, nil
}

// composeRecords embeds each review's reactions into its document and orders the records by id,
// which for ids from PushReview is write order. A document that does not decode is passed on
// unchanged so that the adapter skips and logs it.
func composeRecords(reviews map[string]string, reactions map[string]map[string]string) []reviewstore.RawRecord {
	records := make([]reviewstore.RawRecord, 0, len(reviews))

	for reviewID, raw := range reviews {
		data := []byte(raw)

		if document, err := reviewstore.UnmarshalDocument(data); err == nil && len(reactions[reviewID]) > 0 {
			document.Reactions = reactions[reviewID]

			if encoded, marshalErr := reviewstore.MarshalDocument(document); marshalErr == nil {
				data = encoded
			}
		}

		records = append(records, reviewstore.RawRecord{ID: reviewID, Data: data})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records
}

func (b *Backend) reviewsKey(movieID core.MovieID) string {
	return fmt.Sprintf("%s:movie:%d:reviews", b.keyPrefix, movieID)
}

func (b *Backend) reactionsKey(movieID core.MovieID, reviewID core.ReviewID) string {
	keyPrefix, keySuffix := b.reactionsKeyParts(movieID)

	return keyPrefix + reviewID + keySuffix
}

// reactionsKeyParts surround the review id in a reactions key.
func (b *Backend) reactionsKeyParts(movieID core.MovieID) (string, string) {
	return fmt.Sprintf("%s:movie:%d:review:", b.keyPrefix, movieID), ":reactions"
}

func parseChangedMovie(payload string) (core.MovieID, bool) {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return core.MovieID(id), true
}
