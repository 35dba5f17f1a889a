// Package domain defines the hiring records the client moves between the
// remote service, the local store and the board.
//
// Jobs, candidates and assessments are keyed collections (they implement
// Record) and are the only entities the optimistic mutation engine journals.
// Notes and timeline events are fetched and appended per candidate.
//
// Timestamps decode leniently: a stored or remote record with a malformed
// date still loads, with a zero time that reconciliation later replaces with
// the load time. Shape checks use validator struct tags via Validate.
package domain
