// Package submitreview implements the Submit Review use case.
//
// Input is validated first: content is trimmed and must not be empty, the rating must be 1..10,
// then movie id and title are checked. Then the viewer must be authenticated, then exactly one
// write goes to the review store. The new review reaches open feeds through their subscription,
// not through the result of this command.
package submitreview
