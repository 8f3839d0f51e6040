package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/middleware"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

// writeErr maps a service error onto the response envelope. Access denials
// carry no detail in any mode.
func writeErr(c *gin.Context, err error) {
	var te *service.TransportError
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, serializer.Forbidden(""))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFound(""))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
	case errors.As(err, &te):
		c.JSON(http.StatusServiceUnavailable, serializer.Unavailable("", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "internal error", err))
	}
}

// agencyFrom answers 401 when AgencyAuth did not run for the route.
func agencyFrom(c *gin.Context) (*model.Agency, bool) {
	a, ok := middleware.AgencyFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.CheckLogin())
		return nil, false
	}
	return a, true
}

// uuidParam parses a path parameter; malformed ids are a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr(name+" is invalid", err))
		return uuid.Nil, false
	}
	return id, true
}
