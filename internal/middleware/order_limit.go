package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ==================== 下单限流 ====================

// UserRateLimiter 按用户的令牌桶限流
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastGC   time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter perMinute: 每分钟请求数，burst: 突发上限
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 3
	}
	return &UserRateLimiter{
		limiters: make(map[int64]*userLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		lastGC:   time.Now(),
	}
}

// Allow 用户是否还有可用令牌
func (l *UserRateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.gcLocked(now)

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// gcLocked 清理长时间未访问的用户
func (l *UserRateLimiter) gcLocked(now time.Time) {
	if now.Sub(l.lastGC) < l.idleTTL {
		return
	}
	for id, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, id)
		}
	}
	l.lastGC = now
}

// OrderRateLimit 下单接口限流，需放在 JWTAuth 之后
func OrderRateLimit(l *UserRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 || l.Allow(userID) {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(time.Minute.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    429,
			"message": "提交过于频繁，请稍后重试",
		})
		c.Abort()
	}
}
