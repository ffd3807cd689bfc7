package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginLimiter 是基于 Redis 的固定窗口计数器，按 IP+邮箱+小时 计数。
type loginLimiter struct {
	redis  redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

func newLoginLimiter(client redis.Cmdable, perHour int) *loginLimiter {
	return &loginLimiter{redis: client, limit: int64(perHour), window: time.Hour, now: time.Now}
}

func (l *loginLimiter) key(ip, email string) string {
	return fmt.Sprintf("rate:login:%s:%s:%s", ip, email, l.now().UTC().Format("2006010215"))
}

// hit 记录一次尝试并返回窗口内的累计次数。
// 建键与过期在同一个 MULTI 中完成，计数键不会丢失 TTL。
func (l *loginLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// allow 报告本次尝试是否在限额内。计数器不可用时放行并返回错误供调用方记录。
func (l *loginLimiter) allow(ctx context.Context, ip, email string) (bool, error) {
	count, err := l.hit(ctx, l.key(ip, email))
	if err != nil {
		return true, err
	}
	return count <= l.limit, nil
}
