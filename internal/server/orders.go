package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/orders"
)

func (s *Server) listOrders(c *gin.Context) {
	list, err := s.deps.Orders.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, list)
}

// createOrder checks out the cart sent in the body, or the session cart when
// the body has none. A valid bearer token decides the user; without one the
// body user_id is used.
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	userID := int64(req.UserID)
	if tokenUser, present, err := requestUser(c); present {
		if err != nil {
			s.respondError(c, err)
			return
		}
		userID = tokenUser
	}

	lines := req.lines()
	if lines == nil {
		var err error
		if lines, err = s.deps.Carts.Get(ctx, sessionOf(c)); err != nil {
			s.respondError(c, err)
			return
		}
	}

	placed, err := s.deps.Orders.Create(ctx, userID, lines)
	if errors.Is(err, orders.ErrEmptyCart) {
		c.JSON(http.StatusOK, envelope{Success: false, Message: orders.ErrEmptyCart.Message})
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Carts.Clear(ctx, sessionOf(c)); err != nil {
		s.log.Warn("failed to clear cart after checkout",
			slog.Int64("order_id", placed.OrderID),
			slog.Any("error", err))
	}

	skipped := placed.Skipped
	if skipped == nil {
		skipped = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "order created",
		"order_id":            placed.OrderID,
		"total_amount":        placed.Total.StringFixed(2),
		"skipped_product_ids": skipped,
	})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Orders.UpdateStatus(c.Request.Context(), int64(req.OrderID), req.Status); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "order status updated"})
}

func (s *Server) advanceOrder(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	next, err := s.deps.Orders.Advance(c.Request.Context(), int64(req.OrderID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, gin.H{"order_id": int64(req.OrderID), "status": next})
}

func (s *Server) deleteOrder(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Orders.Delete(c.Request.Context(), int64(req.OrderID)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "order deleted"})
}
