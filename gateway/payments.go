package gateway

import (
	"net/http"

	"github.com/example/tienda/pkg/payment"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) paymentSheet(c *gin.Context) {
	if g.deps.Stripe == nil {
		g.fail(c, "Failed to create payment intent", payment.ErrNotConfigured)
		return
	}
	var req payment.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	sheet, err := g.deps.Stripe.PaymentSheet(c.Request.Context(), req.Amount)
	if err != nil {
		g.fail(c, "Failed to create payment intent", err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (g *Gateway) paypalOrder(c *gin.Context) {
	if g.deps.PayPal == nil {
		g.fail(c, "Failed to create PayPal order", payment.ErrNotConfigured)
		return
	}
	var req payment.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	id, err := g.deps.PayPal.CreateOrder(c.Request.Context(), req.Amount)
	if err != nil {
		g.fail(c, "Failed to create PayPal order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderID": id})
}
