// Package api is the HTTP client for the hiring API.
//
// # Calls
//
// Every call goes through Client.Invoke, which encodes the body as JSON,
// unwraps the {"success","data"} envelope and classifies failures into
// *Error values. Resource methods (ListJobs, PatchCandidate, PutAssessment,
// AddNote and so on) are thin wrappers that pick the verb and path.
//
// # Failure classification
//
// Connection failures, per-attempt timeouts, 5xx, 408 and 429 are retryable.
// Any other 4xx and undecodable bodies are terminal. Two sentinels sit
// outside that split and are never retried:
//
//   - ErrAborted: the caller's context ended while a request, a rate-limit
//     wait or a backoff wait was in flight.
//   - ErrCircuitOpen: the breaker refused the attempt without touching the
//     network.
//
// # Retry
//
// RetryPolicy draws each backoff uniformly from
// [0, min(MaxDelay, BaseDelay*2^attempt)] (full jitter). The sleep and the
// random source are injectable so tests can count delays without waiting.
//
// # Circuit breaker
//
// When enabled, each attempt runs through a sony/gobreaker breaker that trips
// after FailureThreshold consecutive retryable failures, stays open for
// RecoveryTimeout, then admits a single probe. Terminal 4xx responses count as
// successes for the breaker: the service answered.
//
// # Idempotency
//
// Mutating calls send an Idempotency-Key header. The engine attaches the
// journal entry id with WithIdempotencyKey so every retry of one logical
// mutation carries the same key.
//
// # Metrics
//
// Stats exposes atomic counters for the UI. The same events feed prometheus
// collectors registered on Options.Registerer.
package api
