/*
Package resilience provides a circuit breaker for calls to remote dependencies.

# Overview

The breaker guards the remote driver catalog source. After FailureThreshold
consecutive failures it opens and fails fast with ErrCircuitOpen; once Cooldown
has passed it lets HalfOpenProbes calls through, closing again on success.

# Usage

	breaker := resilience.New("catalog-http", resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})

	err := breaker.Do(ctx, func(ctx context.Context) error {
		return fetch(ctx)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// degrade
	}
*/
package resilience
