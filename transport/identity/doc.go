// Package identity turns bearer tokens into viewers. Tokens are HS256 JWTs whose subject is the
// user id; display name and avatar ride along as claims.
package identity
