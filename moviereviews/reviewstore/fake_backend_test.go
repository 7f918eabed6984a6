package reviewstore_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

var errBackendDown = errors.New("backend down")

// fakeBackend keeps documents in memory and fans changes out through a reviewstore.Hub.
type fakeBackend struct {
	mu        sync.Mutex
	documents map[core.MovieID]map[core.ReviewID]reviewstore.Document
	raw       map[core.MovieID]map[core.ReviewID][]byte
	nextID    int
	failing   bool
	hub       *reviewstore.Hub
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		documents: make(map[core.MovieID]map[core.ReviewID]reviewstore.Document),
		raw:       make(map[core.MovieID]map[core.ReviewID][]byte),
	}
	b.hub = reviewstore.NewHub(b.load, nil)

	return b
}

func (b *fakeBackend) fail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = true
}

// putRaw stores bytes verbatim, used to plant malformed records.
func (b *fakeBackend) putRaw(movieID core.MovieID, reviewID core.ReviewID, data []byte) {
	b.mu.Lock()
	if b.raw[movieID] == nil {
		b.raw[movieID] = make(map[core.ReviewID][]byte)
	}
	b.raw[movieID][reviewID] = data
	b.mu.Unlock()

	b.hub.Notify(movieID)
}

func (b *fakeBackend) load(_ context.Context, movieID core.MovieID) ([]reviewstore.RawRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing {
		return nil, errBackendDown
	}

	records := make([]reviewstore.RawRecord, 0)

	for id, document := range b.documents[movieID] {
		data, err := reviewstore.MarshalDocument(document)
		if err != nil {
			return nil, err
		}
		records = append(records, reviewstore.RawRecord{ID: id, Data: data})
	}

	for id, data := range b.raw[movieID] {
		records = append(records, reviewstore.RawRecord{ID: id, Data: data})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records, nil
}

func (b *fakeBackend) SubscribeReviews(
	ctx context.Context,
	movieID core.MovieID,
	onChange func([]reviewstore.RawRecord),
) (func(), error) {
	return b.hub.Subscribe(ctx, movieID, onChange)
}

func (b *fakeBackend) PushReview(
	_ context.Context,
	movieID core.MovieID,
	document reviewstore.Document,
) (core.ReviewID, error) {
	b.mu.Lock()

	if b.failing {
		b.mu.Unlock()
		return "", errBackendDown
	}

	b.nextID++
	id := fmt.Sprintf("review-%03d", b.nextID)

	if b.documents[movieID] == nil {
		b.documents[movieID] = make(map[core.ReviewID]reviewstore.Document)
	}
	b.documents[movieID][id] = document
	b.mu.Unlock()

	b.hub.Notify(movieID)

	return id, nil
}

func (b *fakeBackend) ReadReaction(
	_ context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failing {
		return "", errBackendDown
	}

	return b.documents[movieID][reviewID].Reactions[userID], nil
}

func (b *fakeBackend) WriteReaction(
	_ context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
	symbol string,
) error {
	b.mu.Lock()

	if b.failing {
		b.mu.Unlock()
		return errBackendDown
	}

	if b.documents[movieID] == nil {
		b.documents[movieID] = make(map[core.ReviewID]reviewstore.Document)
	}

	document := b.documents[movieID][reviewID]
	if document.Reactions == nil {
		document.Reactions = make(map[string]string)
	}

	if symbol == "" {
		delete(document.Reactions, userID)
	} else {
		document.Reactions[userID] = symbol
	}

	b.documents[movieID][reviewID] = document
	b.mu.Unlock()

	b.hub.Notify(movieID)

	return nil
}
