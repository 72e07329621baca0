package util

import (
	"bitwise74/shop-api/pkg/query"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindList reads the list parameters from the query string
func BindList(c *gin.Context) (query.Params, bool) {
	var p query.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		Abort(c, http.StatusBadRequest, "Invalid list parameters")
		return p, false
	}

	return p, true
}

// AbortList answers a failed list query, 400 for bad parameters and 500 otherwise
func AbortList(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, query.ErrBadFilter) || errors.Is(err, query.ErrBadPage) {
		Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	Internal(c, err, logMsg)
}
