package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "responseMeta"
	requestStartKey = "requestStart"

	MetaCacheHit       = "cache_hit"
	MetaProcessingTime = "processing_time_ms"
)

// WithResponseMeta stamps the request start so envelope meta can report elapsed time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetMeta records a value for the meta block of the current response envelope.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta := c.GetStringMap(responseMetaKey)
	if meta == nil {
		meta = map[string]interface{}{}
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit flags whether the payload was served from the report cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, MetaCacheHit, hit)
}

// Meta returns what handlers recorded, or nil when nothing was. Elapsed time is filled in
// from the request stamp unless a handler already set it.
func Meta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := c.GetStringMap(responseMetaKey)
	if meta == nil {
		return nil
	}
	if _, ok := meta[MetaProcessingTime]; !ok {
		if start, ok := c.Get(requestStartKey); ok {
			if t, ok := start.(time.Time); ok {
				meta[MetaProcessingTime] = time.Since(t).Milliseconds()
			}
		}
	}
	return meta
}
