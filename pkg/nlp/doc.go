// Package nlp defines the classification provider contract shared by every
// backend, together with the error taxonomy and the wrappers that add
// resilience around a provider.
//
// # Providers
//
// A Provider scores a types.ClassificationRequest and returns its native JSON
// payload. Providers never sort or filter; ranking is done by the normalizer.
// Providers that can be unusable for a request (a remote endpoint without a
// credential) also implement Availability.
//
// # Wrappers
//
//   - RetryProvider: retry with exponential backoff for transient failures
//   - CircuitBreakerProvider: sony/gobreaker around a provider, alerting on trips
//   - TrackingProvider: one parquet record per attempt
//
// Wrappers preserve the wrapped provider's ID and availability.
//
// # Usage
//
//	var p nlp.Provider = remote
//	p = nlp.NewRetryProvider(p, nlp.DefaultRetryConfig())
//	p = nlp.NewCircuitBreakerProvider(p, cfg.CircuitBreaker, alerter, logger)
//
// # Error Handling
//
// Failures are reported with typed errors that support errors.Is:
//   - RemoteError: non-2xx status or error body from a hosted endpoint
//   - NetworkError: transport failure
//   - TimeoutError: the attempt exceeded its deadline
//   - ResponseShapeError: payload in none of the accepted shapes
//
// ErrorKind maps any of them to the name recorded in a types.ProviderFailure.
package nlp
