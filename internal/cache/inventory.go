package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	PostKeyPrefix         = "post:%d"
	RevokedTokenKeyPrefix = "revoked:%s"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// RevokeToken records a token JTI on the denylist until the token would have
// expired anyway.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether the JTI is on the denylist. Fails open when
// Redis is unavailable.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	return err == nil && n > 0
}
