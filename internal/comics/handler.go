package comics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comicshelf/internal/index"
	"comicshelf/internal/pages"
	"comicshelf/internal/scanner"
	"comicshelf/pkg/utils"
)

type Handler struct {
	Index   *index.Index
	Scanner *scanner.Scanner
	Pages   *pages.Service
	Logger  *slog.Logger
	// Timeout bounds a single request's archive work; zero means no limit.
	Timeout time.Duration
}

func NewHandler(ix *index.Index, sc *scanner.Scanner, ps *pages.Service, logger *slog.Logger) *Handler {
	return &Handler{
		Index:   ix,
		Scanner: sc,
		Pages:   ps,
		Logger:  utils.ComponentLogger(logger, "comics"),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/comics", h.list)                        // GET /api/comics
	rg.GET("/comics/:id", h.getByID)                 // GET /api/comics/:id
	rg.GET("/comic/:id/page/:pageNumber", h.getPage) // GET /api/comic/:id/page/:pageNumber
}

func (h *Handler) list(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	// a failed pass still lists what is already indexed
	if _, err := h.Scanner.Reconcile(ctx); err != nil {
		h.Logger.Error("reconcile failed", slog.Any("error", err))
	}

	c.JSON(http.StatusOK, h.Index.All())
}

func (h *Handler) getByID(c *gin.Context) {
	rec, ok := h.Index.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) getPage(c *gin.Context) {
	id := c.Param("id")
	n, err := strconv.Atoi(c.Param("pageNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	page, err := h.Pages.GetPage(ctx, id, n)
	if err != nil {
		switch {
		case errors.Is(err, pages.ErrComicNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
		case errors.Is(err, pages.ErrArchiveMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "archive file missing"})
		case errors.Is(err, pages.ErrInvalidPageIndex):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		default:
			h.Logger.Error("get page failed",
				slog.String("comic_id", id), slog.Int("page", n), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read page"})
		}
		return
	}

	c.Data(http.StatusOK, page.ContentType, page.Data)
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.Timeout)
	}
	return context.WithCancel(c.Request.Context())
}
