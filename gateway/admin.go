package gateway

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/example/tienda/pkg/analytics"
	"github.com/example/tienda/pkg/auth"
	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

// authorizeAdmin resolves the bearer token to an admin uid. Token problems
// are ErrUnauthorized; an unknown or non-admin uid is ErrNotFound.
func (g *Gateway) authorizeAdmin(c *gin.Context) (*auth.Identity, error) {
	token, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shop.ErrUnauthorized, err)
	}
	if g.deps.Verifier == nil {
		return nil, fmt.Errorf("%w: token verification is not configured", shop.ErrUnauthorized)
	}

	id, err := g.deps.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shop.ErrUnauthorized, err)
	}

	admin, err := g.deps.Users.IsAdmin(c.Request.Context(), id.UID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("%w: %s is not an admin", shop.ErrNotFound, id.UID)
	}
	return id, nil
}

func (g *Gateway) adminOnly(c *gin.Context) {
	id, err := g.authorizeAdmin(c)
	if err != nil {
		g.fail(c, "Admin access denied", err)
		return
	}
	c.Set("uid", id.UID)
	c.Next()
}

// requireAdmin guards admin mutations when auth.enforce_admin is set.
func (g *Gateway) requireAdmin() gin.HandlerFunc {
	if !g.config.Auth.EnforceAdmin {
		return g.openRoute
	}
	return g.adminOnly
}

func (g *Gateway) openRoute(c *gin.Context) {
	c.Next()
}

func (g *Gateway) adminCheck(c *gin.Context) {
	id, err := g.authorizeAdmin(c)
	if err != nil {
		g.fail(c, "Admin access denied", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": id.UID, "admin": true})
}

func (g *Gateway) adminStats(c *gin.Context) {
	topN := analytics.DefaultTopN
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			g.badRequest(c, fmt.Errorf("top must be a positive integer"))
			return
		}
		topN = n
	}

	summary, err := g.deps.Stats.Summary(c.Request.Context(), topN)
	if err != nil {
		g.fail(c, "Failed to compute statistics", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
