package photos

// This file defines functional options that configure the Library during
// construction. Keeping them in a standalone file avoids cluttering
// photos.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"
)

// Option configures a Library during construction in New.
//
// Options are applied after environment defaults from LoadConfig, so an
// explicit option always wins over an environment variable. Options must be
// deterministic and side-effect free.
type Option func(*Library) error

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(lib *Library) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		lib.http.Timeout = d
		return nil
	}
}

// WithPageSize sets the logical page size for album pagination. The wire
// request limit is always twice this value to accommodate the interleaved
// asset and master records of one page.
func WithPageSize(n int) Option {
	return func(lib *Library) error {
		if n <= 0 {
			return fmt.Errorf("page size must be > 0")
		}
		lib.pageSize = n
		return nil
	}
}

// WithRetryPolicy installs the retry policy consulted when a page fetch
// fails. Albums inherit the library-level policy; see Album.SetRetryPolicy
// for per-album overrides. Without a policy, fetch failures propagate
// immediately.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(lib *Library) error {
		lib.retry = p
		return nil
	}
}

// WithSkipOrphanMasters makes reconciliation skip master records that have no
// matching asset record in their page instead of aborting the iteration.
// Skipped masters still advance the offset cursor.
func WithSkipOrphanMasters(enabled bool) Option {
	return func(lib *Library) error {
		lib.skipOrphans = enabled
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// Do not enable this option in production environments: dumps include session
// query parameters and rendition URLs.
func WithDebugLogging(enabled bool) Option {
	return func(lib *Library) error {
		if enabled {
			base := lib.http.Transport
			lib.http.Transport = &debugTransport{base: base}
		}
		return nil
	}
}
