// Package cache holds the cached list of currently blocked user ids.
package cache

import "context"

// BlockedSetCache caches the result of the blocked-users query.
// Get reports hit=false when nothing is cached.
type BlockedSetCache interface {
	Get(ctx context.Context) (ids []int64, hit bool, err error)
	Set(ctx context.Context, ids []int64) error
	Invalidate(ctx context.Context) error
}
