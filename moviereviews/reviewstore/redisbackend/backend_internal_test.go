package redisbackend

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_Keys_Use_Prefix_And_Movie(t *testing.T) {
	// setup
	backend, err := New(redis.NewClient(&redis.Options{Addr: "localhost:0"}), WithKeyPrefix("test"))
	require.NoError(t, err)

	// act
	reviewsKey := backend.reviewsKey(603)
	reactionsKey := backend.reactionsKey(603, "r-1")

	// assert
	assert.Equal(t, "test:movie:603:reviews", reviewsKey)
	assert.Equal(t, "test:movie:603:review:r-1:reactions", reactionsKey)
}

func Test_New_Defaults_And_Nil_Client(t *testing.T) {
	// act
	_, nilErr := New(nil)
	backend, err := New(redis.NewClient(&redis.Options{Addr: "localhost:0"}), WithKeyPrefix(""), WithChannel(""))

	// assert
	assert.ErrorIs(t, nilErr, ErrNilClient)
	require.NoError(t, err)
	assert.Equal(t, defaultKeyPrefix, backend.keyPrefix)
	assert.Equal(t, defaultChannel, backend.channel)
}

func Test_ComposeRecords_Embeds_Reactions_And_Orders_By_ID(t *testing.T) {
	// arrange
	reviews := map[string]string{
		"0002": `{"userId":"u-1","content":"second","rating":7,"createdAt":2}`,
		"0001": `{"userId":"u-1","content":"first","rating":8,"createdAt":1}`,
		"0003": `not json`,
	}
	reactions := map[string]map[string]string{
		"0001": {"u-2": core.Heart.Emoji()},
		"0003": {"u-2": core.Smile.Emoji()},
	}

	// act
	records := composeRecords(reviews, reactions)

	// assert
	require.Len(t, records, 3)
	assert.Equal(t, []core.ReviewID{"0001", "0002", "0003"},
		[]core.ReviewID{records[0].ID, records[1].ID, records[2].ID})

	first, err := reviewstore.UnmarshalDocument(records[0].Data)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u-2": core.Heart.Emoji()}, first.Reactions)

	second, err := reviewstore.UnmarshalDocument(records[1].Data)
	require.NoError(t, err)
	assert.Empty(t, second.Reactions)

	assert.Equal(t, []byte(`not json`), records[2].Data)
}

func Test_ParseChangedMovie(t *testing.T) {
	testCases := map[string]struct {
		movieID core.MovieID
		valid   bool
	}{
		"603":  {movieID: 603, valid: true},
		"0":    {valid: false},
		"-1":   {valid: false},
		"abc":  {valid: false},
		"":     {valid: false},
		"1e10": {valid: false},
	}

	for payload, expected := range testCases {
		movieID, valid := parseChangedMovie(payload)

		assert.Equal(t, expected.valid, valid, payload)
		assert.Equal(t, expected.movieID, movieID, payload)
	}
}

func Test_ParseSnapshot_Groups_Documents_And_Reactions(t *testing.T) {
	// arrange
	result := []any{
		"0001", `{"content":"first"}`, []any{},
		"0002", `{"content":"second"}`, []any{"u-2", core.Heart.Emoji(), "u-3", core.Smile.Emoji()},
	}

	// act
	reviews, reactions, err := parseSnapshot(result)

	// assert
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0001": `{"content":"first"}`, "0002": `{"content":"second"}`}, reviews)
	assert.Empty(t, reactions["0001"])
	assert.Equal(t, map[string]string{"u-2": core.Heart.Emoji(), "u-3": core.Smile.Emoji()}, reactions["0002"])
}

func Test_ParseSnapshot_Rejects_Unexpected_Shapes(t *testing.T) {
	testCases := []struct {
		description string
		result      []any
	}{
		{description: "incomplete entry", result: []any{"0001", `{}`}},
		{description: "id is not a string", result: []any{int64(1), `{}`, []any{}}},
		{description: "reactions are not a list", result: []any{"0001", `{}`, "u-2"}},
		{description: "dangling reaction key", result: []any{"0001", `{}`, []any{"u-2"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			_, _, err := parseSnapshot(tc.result)

			// assert
			assert.ErrorIs(t, err, errSnapshotShape)
		})
	}
}
