// Package embedding routes text-to-vector requests through an ordered chain
// of providers with content-addressed caching, per-provider circuit breakers,
// and optional rate limiting. Failure of one provider falls through to the
// next; partial batch failures are reported per item.
package embedding
