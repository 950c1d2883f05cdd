package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"queueless/internal/pkg/apperr"
)

// ParamID parses a positive int64 path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// QueryInt64 parses an optional int64 query parameter; empty gives nil.
func QueryInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apperr.Validation("invalid " + name)
	}
	return &v, nil
}
