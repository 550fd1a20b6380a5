// Package handler holds the helpers shared by the emulated backend's route
// handlers. Every response is an envelope whose HTTP status mirrors its code.
package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

// Respond writes data as a 200 envelope, or err as a failed one.
func Respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, data, "")
}

func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	httputil.RespondWithError(c, err)
}

// Bind decodes the JSON body into obj. An empty body leaves obj untouched.
func Bind(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return errors.BadRequest("request body too large", err)
		}
		return errors.BadRequest("invalid request body", err)
	}
	return nil
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter. Absent means 0.
func QueryInt(c *gin.Context, key string) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("%s must be an integer", key), err)
	}
	return v, nil
}

// QueryBool reads an optional boolean query parameter. Absent means nil.
func QueryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("%s must be true or false", key), err)
	}
	return &v, nil
}

// QueryPage reads page and pageSize.
func QueryPage(c *gin.Context) (model.Pagination, error) {
	page, err := QueryInt(c, "page")
	if err != nil {
		return model.Pagination{}, err
	}
	size, err := QueryInt(c, "pageSize")
	if err != nil {
		return model.Pagination{}, err
	}
	return model.Pagination{Page: int(page), PageSize: int(size)}, nil
}
