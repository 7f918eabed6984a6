// Package togglereaction implements the React use case.
//
// A user holds at most one reaction per review. Reacting with the held symbol clears it, reacting
// with any other symbol replaces it in a single write.
package togglereaction
