package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// slidingWindow trims entries older than the window and admits the request
// when fewer than limit remain. Scores are milliseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1}
end
return {0, 0}
`)

// redisRateLimit limits each client IP to burst requests per burst/rps seconds,
// shared across every server instance. It returns false when Redis could not
// decide, leaving the request untouched.
func redisRateLimit(c *gin.Context, rdb redis.Scripter, prefix string, rps, burst int) bool {
	window := time.Duration(burst) * time.Second / time.Duration(rps)
	now := time.Now()
	key := fmt.Sprintf("%s:%s", prefix, c.ClientIP())
	member := strconv.FormatInt(now.UnixNano(), 10)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
	defer cancel()
	res, err := slidingWindow.Run(ctx, rdb, []string{key}, window.Milliseconds(), burst, now.UnixMilli(), member).Int64Slice()
	if err != nil || len(res) < 2 {
		return false
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(burst))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
	if res[0] == 0 {
		retry := int(window.Seconds())
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retry,
		})
		return true
	}
	c.Next()
	return true
}

// HybridRateLimit uses the Redis sliding window and falls back to the
// in-process bucket when Redis is nil or unreachable. rps and burst below 1
// are raised to 1.
func HybridRateLimit(rdb redis.Scripter, log *zap.Logger, prefix string, rps, burst int) gin.HandlerFunc {
	rps, burst = max(rps, 1), max(burst, 1)
	memory := RateLimit(rps, burst)
	return func(c *gin.Context) {
		if rdb != nil && redisRateLimit(c, rdb, prefix, rps, burst) {
			return
		}
		if rdb != nil {
			log.Warn("redis rate limit unavailable, using in-memory limiter", zap.String("prefix", prefix))
		}
		memory(c)
	}
}
