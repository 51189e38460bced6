// Package retry provides bounded retry with backoff for transient fetch failures.
//
// Only errors whose type is retryable (network failures, 429 and 5xx responses)
// are retried; a 404 on a listing page is the normal end of pagination and is
// returned immediately.
//
//	body, err := retry.DoWithResult(func() ([]byte, error) {
//		return client.get(ctx, url)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//	})
package retry
