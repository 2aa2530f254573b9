package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions configures the engine built by NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	AdminToken     string
	Metrics        http.Handler
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), RequestLogger(), CORS(opts.AllowedOrigins))
	RegisterRoutes(r, h, opts)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler, opts RouterOptions) {
	r.GET("/healthz", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	r.GET("/views", h.GetViews)
	r.POST("/views", h.RecordView)
	r.DELETE("/views", AdminAuth(opts.AdminToken), h.ResetViews)

	r.GET("/projects", h.Projects)
	r.GET("/contributions", h.Contributions)

	r.GET("/profile", h.Profile)
	r.GET("/experience", h.Experience)
	r.GET("/education", h.Education)
	r.POST("/contact", h.Contact)

	// Admin routes only exist once a token is configured.
	if opts.AdminToken == "" {
		return
	}
	admin := r.Group("/admin")
	admin.Use(AdminAuth(opts.AdminToken))
	{
		admin.GET("/stats", h.AdminStats)
		admin.POST("/cache/purge", h.PurgeCache)
	}
}
