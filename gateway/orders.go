package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) placeOrder(c *gin.Context) {
	var req shop.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	order, err := g.deps.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to place order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (g *Gateway) listOrders(c *gin.Context) {
	orders, err := g.deps.Orders.OrdersByUID(c.Request.Context(), c.Query("uid"))
	if err != nil {
		g.fail(c, "Failed to list orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) listAllOrders(c *gin.Context) {
	orders, err := g.deps.Orders.AllOrders(c.Request.Context())
	if err != nil {
		g.fail(c, "Failed to list orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) notifyStatus(c *gin.Context) {
	var req shop.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	order, err := g.deps.Notify.ChangeStatus(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, shop.ErrNotifyFailed) {
			g.fail(c, "Order status updated but the email could not be sent", err)
			return
		}
		g.fail(c, "Failed to update order status", err)
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("Pedido %d actualizado a %s, notificación enviada a %s", order.ID, order.Status, req.Email))
}
