package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/product/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/product/:id", "418"))

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/product/"+id, nil))
		require.Equal(t, http.StatusTeapot, w.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/product/:id", "418"))
	assert.Equal(t, before+3, after)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "shop_http_requests_total"))
}

func TestDomainCounters(t *testing.T) {
	sent := testutil.ToFloat64(notifications.WithLabelValues("sent"))
	RecordNotification("sent")
	assert.Equal(t, sent+1, testutil.ToFloat64(notifications.WithLabelValues("sent")))

	orders := testutil.ToFloat64(ordersPlaced)
	RecordOrderPlaced()
	assert.Equal(t, orders+1, testutil.ToFloat64(ordersPlaced))

	purged := testutil.ToFloat64(usersPurged)
	RecordPurged(0)
	RecordPurged(4)
	assert.Equal(t, purged+4, testutil.ToFloat64(usersPurged))
}
