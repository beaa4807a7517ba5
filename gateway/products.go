package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) listProducts(c *gin.Context) {
	var filter models.ProductFilter
	if raw := c.Query("categoria"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			g.badRequest(c, err)
			return
		}
		filter.CategoryID = &id
	}

	products, err := g.deps.Catalog.Products(c.Request.Context(), filter)
	if err != nil {
		g.fail(c, "Failed to list products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) getProduct(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	p, err := g.deps.Catalog.Product(c.Request.Context(), id)
	if err != nil {
		g.fail(c, "Failed to get product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (g *Gateway) addProduct(c *gin.Context) {
	var req shop.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}
	p, err := g.deps.Catalog.AddProduct(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to add product", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (g *Gateway) updateProduct(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	var req shop.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}
	p, err := g.deps.Catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		g.fail(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	if err := g.deps.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		g.fail(c, "Failed to delete product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
