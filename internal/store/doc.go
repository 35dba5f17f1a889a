// Package store is the durable local store: a BadgerDB keyspace holding one
// table per entity kind.
//
// # Key layout
//
//	r\0<table>\0<id>                    JSON record
//	s\0<table>\0<sort>\0<id>            ordered scan entry -> id
//	x\0<table>\0<index>\0<value>\0<id>  secondary index entry -> id
//	m\0<name>                           metadata (markers, timestamps)
//
// Every table operation takes a *Tx, so writes to several tables made inside
// one DB.Update commit atomically. Tables declare a Stamp hook that runs on
// every write: creation time is fixed at insert and updatedAt is always the
// write time, whatever the caller passed.
//
// Markers are TTL entries; the reconciliation service uses one as a
// "seeding in progress" flag that cannot outlive a crashed process.
package store
