package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
	CacheWeek    = 7 * 86400
)

type CacheRouter struct {
	CacheTime int // defaults to CacheNoCache = 0
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetCacheHeader(c, cr.CacheTime)
		c.Next()
	}
}

// SetCacheHeader lets individual end-points override the router default
func SetCacheHeader(c *gin.Context, cacheTime int) {
	switch cacheTime {
	case CacheCustom:
	case CacheNoCache:
		c.Header("cache-control", "no-cache")
	default:
		c.Header("cache-control", "public, max-age="+strconv.Itoa(cacheTime))
	}
}
