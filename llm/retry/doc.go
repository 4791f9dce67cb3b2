// Package retry provides the fixed-delay retry executor used around provider
// calls. Errors carrying types.Error with Retryable=false are not retried.
package retry
