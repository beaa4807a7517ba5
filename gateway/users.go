package gateway

import (
	"net/http"

	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) registerUser(c *gin.Context) {
	var req shop.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}

	user, created, err := g.deps.Users.Register(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to register user", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

func (g *Gateway) getUser(c *gin.Context) {
	user, err := g.deps.Users.User(c.Request.Context(), c.Param("uid"))
	if err != nil {
		g.fail(c, "Failed to get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (g *Gateway) updateUser(c *gin.Context) {
	var req shop.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}
	user, err := g.deps.Users.UpdateProfile(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		g.fail(c, "Failed to update user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
