package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const memberTTL = 5 * time.Minute

// GroupMembers caches group member sets in Redis so hot fan-out paths
// skip the membership query. A nil *GroupMembers is valid and always
// misses, so callers need no guards when the cache is disabled.
type GroupMembers struct {
	rdb *redis.Client
}

// NewGroupMembers constructs the cache, or returns nil for an empty
// address.
func NewGroupMembers(addr string) *GroupMembers {
	if addr == "" {
		return nil
	}
	return &GroupMembers{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func memberKey(groupID int64) string {
	return fmt.Sprintf("group:%d:members", groupID)
}

// Get returns the cached member set, or ok=false on miss.
func (c *GroupMembers) Get(ctx context.Context, groupID int64) ([]int64, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, memberKey(groupID)).Result()
	if err != nil {
		// redis.Nil and transport errors both fall through to the
		// repository
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

// Set stores the member set with a short TTL.
func (c *GroupMembers) Set(ctx context.Context, groupID int64, members []int64) {
	if c == nil {
		return
	}
	data, err := json.Marshal(members)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, memberKey(groupID), data, memberTTL).Err()
}

// Invalidate drops the cached set after any membership mutation.
func (c *GroupMembers) Invalidate(ctx context.Context, groupID int64) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, memberKey(groupID)).Err()
}
