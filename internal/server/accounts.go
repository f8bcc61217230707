package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/auth"
)

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	sess, err := s.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "login successful",
		"token":    sess.Token,
		"user_id":  sess.UserID,
		"username": sess.Username,
	})
}

func (s *Server) currentUser(c *gin.Context) {
	userID, present, err := requestUser(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !present {
		s.respondError(c, auth.ErrInvalidToken)
		return
	}
	ok(c, gin.H{"user_id": userID})
}

func (s *Server) logout(c *gin.Context) {
	token := c.GetString(ctxToken)
	if token == "" {
		s.respondError(c, auth.ErrInvalidToken)
		return
	}
	if err := s.deps.Auth.Logout(c.Request.Context(), token); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "logged out"})
}

func (s *Server) registerUser(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	id, err := s.deps.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.RegistrationKey)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "registration successful",
		"user_id": id,
	})
}
