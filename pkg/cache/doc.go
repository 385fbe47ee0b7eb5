// Package cache provides an optional Redis-backed cache for MPDS facet
// page responses.
//
// The facet endpoint is rate limited and every page request costs the
// mandatory courtesy pause, while the result of one (query, phases,
// page, pagesize) request changes rarely. Caching the successful
// response body for a bounded TTL lets repeated retrievals of the same
// query skip the network entirely.
//
// Only successful pages are cached. Error outcomes (HTTP errors,
// unparseable bodies, upstream error fields, empty result sets) always
// go back to the network, so a transient server problem never sticks.
//
// The cache is strictly optional: a client constructed without a cache
// manager behaves identically, just slower on repeats.
//
// Cache keys are deterministic, derived from the canonical query JSON
// plus the phase filter and pagination parameters:
//
//	mpds:facet:q={"elements":"O"}:phases=1,2,3:page=0:pagesize=1000
//
// Entries carry their own expiry and are additionally bounded by the
// Redis key TTL, so stale data ages out on both paths.
package cache
