// Package redisbackend implements reviewstore.Backend on Redis.
//
// Layout per movie, with a configurable key prefix:
//
//	{prefix}:movie:{movieID}:reviews                       hash  reviewID -> review JSON
//	{prefix}:movie:{movieID}:review:{reviewID}:reactions   hash  userID -> emoji
//
// Every write runs in a MULTI/EXEC transaction together with a PUBLISH of the movie id on the
// change channel. Run subscribes to that channel and triggers the reload of the affected movie's
// subscribers, in this process and in every other process sharing the Redis instance.
package redisbackend
