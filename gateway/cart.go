package gateway

import (
	"net/http"

	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) getActiveCart(c *gin.Context) {
	cart, err := g.deps.Carts.ActiveCart(c.Request.Context(), c.Query("uid"))
	if err != nil {
		g.fail(c, "Failed to get active cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (g *Gateway) updateCart(c *gin.Context) {
	var req shop.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	cart, err := g.deps.Carts.UpdateItem(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to update cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
}
