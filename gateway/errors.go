package gateway

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/tienda/pkg/auth"
	"github.com/example/tienda/pkg/payment"
	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, shop.ErrInvalidInput),
		errors.Is(err, shop.ErrInsufficientStock),
		errors.Is(err, payment.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, shop.ErrNotFound),
		errors.Is(err, shop.ErrCartNotFound),
		errors.Is(err, shop.ErrEmptyCart),
		errors.Is(err, shop.ErrProductNotFound),
		errors.Is(err, shop.ErrOrderNotFound),
		errors.Is(err, shop.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrCartBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the {message, error} body every route uses for errors.
func (g *Gateway) fail(c *gin.Context, message string, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", c.GetString("request_id")),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		g.logger.Error(message, fields...)
	} else {
		g.logger.Debug(message, fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message, "error": err.Error()})
}

// badRequest reports a binding or parsing failure.
func (g *Gateway) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}
