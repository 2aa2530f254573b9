package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/counter"
	"github.com/Zachkp/portfolio/internal/github"
)

// Handler serves the portfolio's JSON API.
type Handler struct {
	counter *counter.Service
	github  *github.Service
	sender  contact.Sender
	limiter *contact.Limiter
}

// NewHandler wires the services. sender may be nil when no mail transport
// is configured.
func NewHandler(cs *counter.Service, gs *github.Service, sender contact.Sender, limiter *contact.Limiter) *Handler {
	return &Handler{
		counter: cs,
		github:  gs,
		sender:  sender,
		limiter: limiter,
	}
}

type recordViewRequest struct {
	PageID string `json:"pageId"`
}

func shortVisitor(c *gin.Context) string {
	return counter.VisitorID(c.ClientIP(), c.Request.UserAgent())[:12]
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  h.counter.StoreName(),
	})
}

func (h *Handler) GetViews(c *gin.Context) {
	page := c.Query("page")
	counts, err := h.counter.GetCounts(c.Request.Context(), page)
	if err != nil {
		h.counterError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"views":       counts.Views,
		"uniqueViews": counts.UniqueViews,
		"pageId":      page,
	})
}

func (h *Handler) RecordView(c *gin.Context) {
	var req recordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLog(c).Debug("Unreadable view payload", zap.Error(err))
	}

	res, err := h.counter.RecordView(c.Request.Context(), req.PageID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.counterError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"views":        res.Views,
		"uniqueViews":  res.UniqueViews,
		"pageId":       req.PageID,
		"isNewVisitor": res.IsNewVisitor,
	})
}

func (h *Handler) ResetViews(c *gin.Context) {
	page := c.Query("page")
	ctx := c.Request.Context()

	var (
		err error
		msg string
	)
	if page == "" {
		err = h.counter.ResetAll(ctx)
		msg = "All page views reset"
	} else {
		err = h.counter.ResetPage(ctx, page)
		msg = fmt.Sprintf("Views reset for page %s", page)
	}
	if err != nil {
		h.counterError(c, err)
		return
	}

	requestLog(c).Info("Page views reset", zap.String("page", page), zap.String("visitor", shortVisitor(c)))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (h *Handler) counterError(c *gin.Context, err error) {
	if errors.Is(err, counter.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page ID is required"})
		return
	}
	requestLog(c).Error("Counter operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.counter.Stats(c.Request.Context())
	if err != nil {
		h.counterError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) PurgeCache(c *gin.Context) {
	h.github.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "GitHub cache purged"})
}

func (h *Handler) setCacheHeaders(c *gin.Context) {
	fresh, revalidate := h.github.CacheWindow()
	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(fresh.Seconds()), int(revalidate.Seconds())))
}

func (h *Handler) Projects(c *gin.Context) {
	list, err := h.github.Projects(c.Request.Context(), c.Query("language"))
	switch {
	case errors.Is(err, github.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No projects found"})
		return
	case err != nil:
		requestLog(c).Error("Failed to fetch projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch projects",
			"details": err.Error(),
		})
		return
	}

	h.setCacheHeaders(c)
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Contributions(c *gin.Context) {
	cal, err := h.github.Contributions(c.Request.Context())
	switch {
	case errors.Is(err, github.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GitHub token not configured"})
		return
	case err != nil:
		requestLog(c).Error("Failed to fetch contributions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch contributions",
			"details": err.Error(),
		})
		return
	}

	h.setCacheHeaders(c)
	c.JSON(http.StatusOK, cal)
}

func (h *Handler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, content.GetProfile())
}

func (h *Handler) Experience(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": content.GetExperience()})
}

func (h *Handler) Education(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"education": content.GetEducation()})
}

func (h *Handler) Contact(c *gin.Context) {
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Contact form is not configured"})
		return
	}
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages, please try again later"})
		return
	}

	var msg contact.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := msg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sender.Send(msg); err != nil {
		requestLog(c).Error("Error sending contact email", zap.String("sender", h.sender.Name()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	requestLog(c).Info("Contact email sent", zap.String("sender", h.sender.Name()), zap.String("visitor", shortVisitor(c)))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thank you for your message! I'll get back to you soon.",
	})
}
