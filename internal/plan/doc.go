// Package plan turns a structured form submission into a generated business
// plan document stored per user.
//
// The generation call is single-attempt with a bounded deadline. Its outcome
// is a tagged Content value: structured JSON kept verbatim, a raw-text
// capture with an extracted summary when the model ignored the JSON format
// request, or a deterministic fallback document when the call failed.
// Upstream unavailability is never surfaced to the caller on this path.
//
// All reads and writes are filtered by the owning user's id inside the
// repository; a plan belonging to another user is reported as not found.
package plan
