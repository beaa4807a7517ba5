package gateway

import (
	"net/http"

	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
)

// FAQ

func (g *Gateway) listFAQ(c *gin.Context) {
	faq, err := g.deps.Content.FAQ(c.Request.Context())
	if err != nil {
		g.fail(c, "Failed to list faq", err)
		return
	}
	c.JSON(http.StatusOK, faq)
}

func (g *Gateway) getFAQ(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	f, err := g.deps.Content.FAQEntry(c.Request.Context(), id)
	if err != nil {
		g.fail(c, "Failed to get faq entry", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (g *Gateway) addFAQ(c *gin.Context) {
	var req shop.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}
	f, err := g.deps.Content.AddFAQ(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to add faq entry", err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (g *Gateway) deleteFAQ(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	if err := g.deps.Content.DeleteFAQ(c.Request.Context(), id); err != nil {
		g.fail(c, "Failed to delete faq entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FAQ entry deleted"})
}

// Posts

func (g *Gateway) listPosts(c *gin.Context) {
	posts, err := g.deps.Content.Posts(c.Request.Context())
	if err != nil {
		g.fail(c, "Failed to list posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (g *Gateway) getPost(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	p, err := g.deps.Content.Post(c.Request.Context(), id)
	if err != nil {
		g.fail(c, "Failed to get post", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (g *Gateway) addPost(c *gin.Context) {
	var req shop.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.badRequest(c, err)
		return
	}
	p, err := g.deps.Content.AddPost(c.Request.Context(), req)
	if err != nil {
		g.fail(c, "Failed to add post", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (g *Gateway) deletePost(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		g.badRequest(c, err)
		return
	}
	if err := g.deps.Content.DeletePost(c.Request.Context(), id); err != nil {
		g.fail(c, "Failed to delete post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
