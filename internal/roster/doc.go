// Package roster implements the activity registry.
//
// The Registry is the single owner of every activity's participant list.
// It is built once from a seed catalog, mutated in place by Signup and
// Unregister, and never persisted: a restart resets all membership to the
// seed state.
//
// The registry performs no capacity check and no email normalization.
// MaxParticipants is informational, and "a@b.edu" and "A@B.edu" are two
// different students.
package roster
