package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/models"
)

func (s *Server) getCart(c *gin.Context) {
	lines, err := s.deps.Carts.Get(c.Request.Context(), sessionOf(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, lines)
}

// addToCart treats quantity as a delta for lines already in the cart and as
// the initial quantity for new ones. A missing quantity means 1.
func (s *Server) addToCart(c *gin.Context) {
	var req cartRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	lines, err := s.deps.Carts.Add(c.Request.Context(), sessionOf(c), int64(req.ProductID), delta)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "added to cart", Data: lines})
}

// removeFromCart drops a product from the cart. Without a product id the
// whole cart is emptied.
func (s *Server) removeFromCart(c *gin.Context) {
	var req cartRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	if req.ProductID == 0 {
		if err := s.deps.Carts.Clear(ctx, sessionOf(c)); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope{Success: true, Message: "cart cleared", Data: []models.CartLine{}})
		return
	}

	lines, err := s.deps.Carts.Remove(ctx, sessionOf(c), int64(req.ProductID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "removed from cart", Data: lines})
}
