package util

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID reads a positive integer path parameter. On failure it has already
// answered with 400.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		Abort(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}

	return uint(id), true
}

// UserID returns the ID stored by the auth middleware
func UserID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}
