// Package feed implements the Review Feed Controller.
//
// A Feed is the live, sorted list of a movie's reviews as seen by one viewer, each paired with its
// reaction summary. The first Snapshot is ready when ReviewsForMovie returns; later snapshots are
// delivered on Updates, latest wins. SubmitReview and React validate, authenticate and write
// through the wrapped command handlers. The written change reaches open feeds through their
// subscriptions; with refresh-after-write enabled every open feed of the movie also re-subscribes
// and replays a fresh snapshot right after the write.
package feed
