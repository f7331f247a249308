// Package retry provides retry logic with configurable backoff strategies.
//
// It is used by the Bilibili client's asset download path: transient
// transport and server faults are retried with exponential backoff, while
// authentication and business-level API errors fail immediately.
//
// Basic usage:
//
//	err := retry.Do(func() error {
//	    return client.DownloadAsset(url)
//	}, retry.DefaultConfig())
//
// Retryability is decided by the RetryIf predicate; the default consults the
// typed error taxonomy in pkg/errors.
package retry
