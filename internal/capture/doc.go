// Package capture intercepts the portal's course-list API responses.
//
// An Interceptor is installed once on each request transport the host page
// uses. When a response's URL contains the configured endpoint marker, its
// JSON body is parsed and the records under the configured field key are
// emitted as a Batch. Array elements that are not objects stay in the raw
// payload only. Parse failures are logged and dropped; the response itself
// always reaches the caller unchanged.
//
// A Window gates those batches: it must be armed before it accepts one, it
// accepts at most one, and it expires on its own after a timeout.
package capture
