package web

import (
	"log"

	"github.com/gin-gonic/gin"

	"tripkit/docstore/docstore"
	"tripkit/store"
)

type ServiceConfig struct {
	IsDev bool
	Port  string
}

// Serve runs the HTTP server. newLocal supplies one local KV per user ID,
// standing in for the per-device storage each user would have on their own
// machine.
func Serve(cfg ServiceConfig, newLocal func(userID string) *store.KV, remote docstore.Store) {
	if !cfg.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}
	// Setting up Gin
	r := gin.New()
	setupMiddlewares(r, cfg.IsDev)
	// Setting up routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := newHandler(newSessions(newLocal, remote), remote)
	defer h.sessions.close()

	api := r.Group("/api")
	{
		api.GET("/trips", h.listTrips)
		api.POST("/trips", h.addTrip)
		api.GET("/trips/current", h.currentTrip)
		api.GET("/trips/:id", h.getTrip)
		api.PUT("/trips/:id", h.updateTrip)
		api.DELETE("/trips/:id", h.deleteTrip)
		api.POST("/trips/:id/select", h.selectTrip)

		api.GET("/trips/:id/schedule", h.getSchedule)
		api.PUT("/trips/:id/schedule", h.putSchedule)

		api.GET("/trips/:id/members", h.listMembers)
		api.POST("/trips/:id/members", h.addMember)
		api.DELETE("/trips/:id/members/:memberId", h.removeMember)

		api.GET("/trips/:id/expenses", h.listExpenses)
		api.POST("/trips/:id/expenses", h.addExpense)
		api.PUT("/trips/:id/expenses/:expenseId", h.updateExpense)
		api.DELETE("/trips/:id/expenses/:expenseId", h.removeExpense)
		api.GET("/trips/:id/balances", h.balances)
		api.GET("/trips/:id/transfers", h.transfers)

		api.GET("/trips/:id/packing", h.listPacking)
		api.POST("/trips/:id/packing/groups", h.addPackingGroup)
		api.DELETE("/trips/:id/packing/groups/:category", h.removePackingGroup)
		api.POST("/trips/:id/packing/items", h.addPackingItem)
		api.POST("/trips/:id/packing/items/:itemId/toggle", h.togglePackingItem)
		api.DELETE("/trips/:id/packing/items/:itemId", h.removePackingItem)
	}

	r.GET("/ws", h.watchDocuments)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
