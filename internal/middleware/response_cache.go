package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dentlink/backend/internal/cache"
	"github.com/dentlink/backend/internal/logger"
)

// ResponseCacheMiddleware caches successful GET responses in Redis with the
// given TTL. The cache key includes path, query string, and user ID so
// personalized pages like the feed never leak between users. An X-Cache
// header reports HIT or MISS.
func ResponseCacheMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		cacheKey := responseCacheKey(c.Request.URL.Path, c.Request.URL.RawQuery, userID)
		ctx := c.Request.Context()

		if cachedData, err := redisClient.Get(ctx, cacheKey); err == nil {
			logger.Log.Debug("response cache hit", zap.String("key", cacheKey))
			c.Header("X-Cache", "HIT")
			c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))
			c.Data(http.StatusOK, "application/json", []byte(cachedData))
			c.Abort()
			return
		}

		writer := &cachedResponseWriter{
			ResponseWriter: c.Writer,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")
		c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))

		c.Next()

		if writer.statusCode >= 200 && writer.statusCode < 300 && writer.body.Len() > 0 {
			if err := redisClient.SetEx(ctx, cacheKey, writer.body.String(), ttl); err != nil {
				logger.Log.Debug("failed to write response to cache",
					zap.String("key", cacheKey),
					zap.Error(err),
				)
			}
		}
	}
}

// CacheInvalidationMiddleware clears matching cache keys after a successful
// POST, PUT, PATCH, or DELETE. Attach to mutation routes whose GET
// counterparts are cached.
func CacheInvalidationMiddleware(invalidationPatterns ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}
		if c.Writer.Status() < 200 || c.Writer.Status() >= 400 {
			return
		}

		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			return
		}

		ctx := c.Request.Context()
		for _, pattern := range invalidationPatterns {
			keys, err := redisClient.Keys(ctx, pattern)
			if err != nil {
				logger.Log.Debug("cache key lookup failed",
					zap.String("pattern", pattern),
					zap.Error(err),
				)
				continue
			}
			if len(keys) == 0 {
				continue
			}
			if err := redisClient.Del(ctx, keys...); err != nil {
				logger.Log.Warn("cache invalidation failed",
					zap.Strings("keys", keys),
					zap.Error(err),
				)
			}
		}
	}
}

func responseCacheKey(path, query, userID string) string {
	key := fmt.Sprintf("response:%s", path)
	if query != "" {
		key = fmt.Sprintf("%s:%s", key, query)
	}
	if userID != "" {
		key = fmt.Sprintf("%s:%s", key, userID)
	}
	return key
}

// cachedResponseWriter captures the response body so it can be stored
type cachedResponseWriter struct {
	gin.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (w *cachedResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *cachedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
