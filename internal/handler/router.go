package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Coach        *CoachHandler
	Clients      *ClientHandler
	Payments     *PaymentHandler
	Tracking     *TrackingHandler
	Categories   *CategoryHandler
	Reports      *ReportHandler
	Sessions     *SessionHandler
	Subscription *SubscriptionHandler
	Exports      *ExportHandler
	System       *MetricsHandler
}

// RegisterRoutes mounts the API on api. Everything except statement downloads, which
// carry their own signed token, sits behind auth.
func RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	api.GET("/exports/:token", h.Exports.Download)

	secured := api.Group("")
	secured.Use(auth)

	secured.GET("/me", h.Coach.Me)
	secured.POST("/me", h.Coach.Bootstrap)

	clients := secured.Group("/clients")
	clients.GET("", h.Clients.List)
	clients.POST("", h.Clients.Create)
	clients.GET("/:id", h.Clients.Get)
	clients.PUT("/:id", h.Clients.Update)
	clients.DELETE("/:id", h.Clients.Delete)
	clients.POST("/:id/deactivate", h.Clients.Deactivate)
	clients.GET("/:id/categories", h.Clients.Categories)
	clients.GET("/:id/attendance", h.Clients.Attendance)
	clients.GET("/:id/balance/audit", h.Clients.AuditBalance)
	clients.POST("/:id/balance/reconcile", h.Clients.ReconcileBalance)
	clients.POST("/:id/balance/adjust", h.Clients.AdjustBalance)
	clients.GET("/:id/statement", h.Clients.Statement)

	payments := secured.Group("/payments")
	payments.GET("", h.Payments.List)
	payments.POST("", h.Payments.Create)
	payments.PATCH("/:id/status", h.Payments.ChangeStatus)
	payments.POST("/:id/toggle", h.Payments.Toggle)
	payments.DELETE("/:id", h.Payments.Delete)

	tracking := secured.Group("/tracking")
	tracking.GET("/clients/:id", h.Tracking.Status)
	tracking.POST("/clients/:id/paid", h.Tracking.MarkPaid)
	tracking.POST("/clients/:id/unpaid", h.Tracking.MarkUnpaid)
	tracking.POST("/clients/:id/toggle", h.Tracking.Toggle)
	tracking.GET("/clients/:id/history", h.Tracking.History)
	tracking.GET("/unpaid", h.Tracking.Unpaid)
	tracking.GET("/stats/categories", h.Tracking.CategoryStats)
	tracking.GET("/stats/categories/:id", h.Tracking.SubcategoryStats)
	tracking.GET("/categories/:id/unpaid", h.Tracking.CategoryUnpaid)

	categories := secured.Group("/categories")
	categories.GET("", h.Categories.List)
	categories.POST("", h.Categories.Create)
	categories.GET("/tree", h.Categories.Tree)
	categories.PUT("/:id", h.Categories.Update)
	categories.DELETE("/:id", h.Categories.Delete)
	categories.POST("/:id/clients/:clientId/toggle", h.Categories.ToggleClient)

	reports := secured.Group("/reports")
	reports.GET("/revenue", h.Reports.Revenue)
	reports.GET("/overdue", h.Reports.Overdue)
	reports.GET("/drilldown", h.Reports.Drilldown)
	reports.GET("/dashboard", h.Reports.Dashboard)

	sessions := secured.Group("/sessions")
	sessions.GET("", h.Sessions.List)
	sessions.POST("", h.Sessions.Create)
	sessions.GET("/:id", h.Sessions.Get)
	sessions.PUT("/:id", h.Sessions.Update)
	sessions.DELETE("/:id", h.Sessions.Delete)
	sessions.GET("/:id/attendance", h.Sessions.Attendees)
	sessions.PUT("/:id/attendance", h.Sessions.SetAttendance)
	sessions.POST("/:id/attendance/:clientId/toggle", h.Sessions.ToggleAttendance)

	subscription := secured.Group("/subscription")
	subscription.GET("/status", h.Subscription.Status)
	subscription.GET("/trial", h.Subscription.Trial)
	subscription.POST("/checkout", h.Subscription.Checkout)
	subscription.POST("/confirm", h.Subscription.Confirm)

	secured.GET("/system/metrics", h.System.System)
}
