package ratings

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cinetic/internal/auth"
	"cinetic/internal/live"
)

type Handler struct {
	Repo *Repo
	Hub  *live.Hub // optional; nil disables broadcasting
}

func NewHandler(repo *Repo, hub *live.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/movies/:id/ratings", h.listByMovie)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/ratings", h.create)
	rg.GET("/ratings", h.listMine)
	rg.DELETE("/ratings/:id", h.delete)
}

type createReq struct {
	IMDBID string `json:"imdb_id"`
	Rating int    `json:"rating"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	imdbID := strings.TrimSpace(req.IMDBID)
	if imdbID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imdb_id required"})
		return
	}

	if req.Rating < 1 || req.Rating > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 10"})
		return
	}

	rating, err := h.Repo.Create(c.Request.Context(), claims.UserID, imdbID, req.Rating)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(live.RatingEvent{
			Type:   "rating.created",
			UserID: rating.UserID,
			IMDBID: rating.IMDBID,
			Rating: rating.Rating,
			At:     time.Now().UTC(),
		})
	}

	c.JSON(http.StatusCreated, rating)
}

func (h *Handler) listByMovie(c *gin.Context) {
	imdbID := strings.TrimSpace(c.Param("id"))
	if imdbID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "movie id required"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByMovie(c.Request.Context(), imdbID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) listMine(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	idRaw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
