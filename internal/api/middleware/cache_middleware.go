package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/almanac-labs/almanac-api/internal/infrastructure/cache"
	"github.com/almanac-labs/almanac-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.NewLogger("info")

type CacheMiddleware struct {
	cache  *cache.RedisClient
	prefix string
}

// NewCacheMiddleware builds the response-cache middleware. Entry lifetimes
// come from the client's per-type TTL table.
func NewCacheMiddleware(cache *cache.RedisClient, prefix string) *CacheMiddleware {
	return &CacheMiddleware{
		cache:  cache,
		prefix: prefix,
	}
}

// responseBuffer is a custom ResponseWriter that stores the response
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{
		ResponseWriter: original,
		body:           bytes.NewBufferString(""),
	}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.ResponseWriter.Write(b)
	return r.body.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.ResponseWriter.WriteString(s)
	return r.body.WriteString(s)
}

func (r *responseBuffer) WriteHeader(code int) {
	r.ResponseWriter.WriteHeader(code)
}

// CacheResponse caches the response of a GET endpoint
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		key := m.generateCacheKey(c)
		cacheType := cacheTypeFor(c.Request.URL.Path)

		if cached, err := m.cache.Get(c, key); err == nil {
			var response map[string]interface{}
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				m.cache.TrackEvent(true, cacheType)
				c.JSON(http.StatusOK, response)
				c.Abort()
				return
			}
		}
		m.cache.TrackEvent(false, cacheType)

		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := m.cache.Set(c, key, buff.body.String(), m.cache.TTLFor(cacheType)); err != nil {
				log.Error("Failed to cache response", zap.Error(err))
			}
		}

		c.Writer = writer
	}
}

// CacheInvalidate invalidates cache entries based on patterns after a
// successful write
func (m *CacheMiddleware) CacheInvalidate(patterns ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			for _, pattern := range patterns {
				key := fmt.Sprintf("%s:%s", m.prefix, pattern)
				if err := m.cache.ClearByPattern(c, key); err != nil {
					log.Error("Failed to invalidate cache", zap.Error(err), zap.String("pattern", pattern))
				}
			}
		}
	}
}

// cacheTypeFor maps a request path onto the client's TTL table: single
// resources cache longer than lists, statistics shortest.
func cacheTypeFor(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "default"
	}

	switch parts[1] {
	case "habits":
		if len(parts) >= 3 {
			return "habit"
		}
		return "habit_list"
	case "challenges":
		if len(parts) >= 3 {
			return "challenge"
		}
		return "challenge_list"
	case "statistics":
		return "statistics"
	default:
		return "default"
	}
}

func (m *CacheMiddleware) generateCacheKey(c *gin.Context) string {
	parts := []string{m.prefix}

	// Resource type and, if present, the resource id
	pathParts := strings.Split(strings.Trim(c.Request.URL.Path, "/"), "/")
	if len(pathParts) >= 2 {
		parts = append(parts, pathParts[1])

		if len(pathParts) >= 3 {
			resourceID := pathParts[2]
			if _, err := uuid.Parse(resourceID); err == nil {
				parts = append(parts, "id", resourceID)
			} else {
				parts = append(parts, resourceID)
			}
			if len(pathParts) >= 4 {
				parts = append(parts, pathParts[3])
			}
		} else {
			parts = append(parts, "list")
		}
	}

	if len(c.Request.URL.RawQuery) > 0 {
		parts = append(parts, c.Request.URL.RawQuery)
	}

	return strings.Join(parts, ":")
}
