// Package resilience holds fault tolerance helpers.
//
// circuitbreaker wraps the database pool so that, once the store has failed
// repeatedly, requests fail fast with a DB error instead of queueing on dead
// connections:
//
//	guarded := circuitbreaker.NewDBCircuitBreaker(db)
//	store := postgres.NewStore(guarded)
package resilience
