package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/catalog"
	"github.com/matthieukhl/shopfront/internal/media"
)

func (s *Server) listProducts(c *gin.Context) {
	recommended, _ := strconv.ParseBool(c.Query("recommended"))

	products, err := s.deps.Catalog.Search(c.Request.Context(), c.Query("search"), recommended)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, products)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	p, err := s.deps.Catalog.Create(c.Request.Context(), req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "product created", Data: p})
}

func (s *Server) updateProduct(c *gin.Context) {
	var req productRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	p, err := s.deps.Catalog.Update(c.Request.Context(), req.input())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "product updated", Data: p})
}

func (s *Server) deleteProduct(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Catalog.Delete(c.Request.Context(), int64(req.ID)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "product deleted"})
}

func (r productRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		ID:          int64(r.ID),
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Image:       r.Image,
		Tags:        r.Tags,
	}
}

// uploadImage stores a multipart "image" file and returns its URL, which
// clients then send as the product image.
func (s *Server) uploadImage(c *gin.Context) {
	if s.deps.Images == nil {
		s.respondError(c, media.ErrDisabled)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxImageSize+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(c, media.ErrImageTooBig)
			return
		}
		s.respondError(c, media.ErrMissingImage)
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, media.ErrMissingImage)
		return
	}
	defer f.Close()

	url, err := s.deps.Images.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), f, header.Size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, gin.H{"url": url})
}
