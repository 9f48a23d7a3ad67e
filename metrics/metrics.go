package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stagesite_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stagesite_uploads_total",
		Help: "Uploaded files by kind and result",
	}, []string{"kind", "result"})

	VideoEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stagesite_video_events_total",
		Help: "Video views and likes",
	}, []string{"event"})
)

// Middleware counts requests using the matched route pattern to keep cardinality low
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
