// Package generator runs the single-item generation pipeline: admission by
// the rate limiter, provider call with retries, payload extraction and
// storage. Run always returns an outcome; failures become outcome data.
package generator
