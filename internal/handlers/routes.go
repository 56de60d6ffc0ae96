package handlers

import (
	"github.com/gin-gonic/gin"
	"linkdesk-backend/internal/middleware"
)

type Handlers struct {
	Orders       *OrdersHandler
	Review       *ReviewHandler
	Export       *ExportHandler
	Drafts       *DraftsHandler
	BulkAnalysis *BulkAnalysisHandler
	DataForSEO   *DataForSEOHandler
}

// RegisterRoutes mounts the authenticated API on api. Handlers left nil are
// not mounted. Client bulk analysis is staff only.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	if h.Drafts != nil {
		api.POST("/orders/drafts", h.Drafts.CreateDraft)
		api.GET("/orders/drafts", h.Drafts.ListDrafts)
		api.PUT("/orders/drafts/:draft_id", h.Drafts.SaveDraft)
	}

	if h.Orders != nil {
		api.GET("/orders", h.Orders.ListOrders)
		api.GET("/orders/:order_id", h.Orders.GetOrder)
		api.DELETE("/orders/:order_id", h.Orders.DeleteOrder)
		api.POST("/orders/:order_id/state", h.Orders.UpdateState)
		api.PUT("/orders/:order_id/groups/:group_id", h.Orders.UpdateGroupTargets)
		api.PATCH("/orders/:order_id/line-items/:item_id", h.Orders.UpdateLineItem)
	}

	if h.Review != nil {
		api.GET("/orders/:order_id/review", h.Review.GetReview)
		submission := api.Group("/orders/:order_id/groups/:group_id/submissions/:submission_id")
		submission.POST("/assign", h.Review.AssignTargetPage)
		submission.POST("/switch", h.Review.SwitchPool)
		submission.POST("/approve", h.Review.Approve)
		submission.POST("/reject", h.Review.Reject)
	}

	if h.Export != nil {
		api.POST("/orders/:order_id/export", h.Export.ExportReview)
	}

	bulk := api.Group("/clients/:client_id/bulk-analysis", middleware.RequireInternal())
	if h.BulkAnalysis != nil {
		bulk.GET("/domains", h.BulkAnalysis.ListDomains)
		bulk.POST("/domains/:domain_id/status", h.BulkAnalysis.UpdateStatus)
		bulk.POST("/domains/:domain_id/verify", h.BulkAnalysis.Verify)
		bulk.POST("/domains/:domain_id/shortcut", h.BulkAnalysis.Shortcut)
		bulk.POST("/shortcut", h.BulkAnalysis.Shortcut)
	}
	if h.DataForSEO != nil {
		bulk.GET("/dataforseo/check-analyzed", h.DataForSEO.CheckAnalyzed)
		bulk.GET("/dataforseo/results", h.DataForSEO.Results)
		bulk.POST("/analyze-dataforseo", h.DataForSEO.Analyze)
	}
}
