// Package hash provides keyed digests for short-lived secrets.
//
// One-time codes are stored as digests so a leaked cache entry does not
// reveal a usable code; Verify compares in constant time.
package hash
