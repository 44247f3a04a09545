package api

import "github.com/gin-gonic/gin"

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.RefreshTokens)
		authGroup.GET("/me", handler.RequireAuth(), handler.Me)
	}

	protected := api.Group("", handler.RequireAuth())
	{
		portfolios := protected.Group("/portfolios")
		{
			portfolios.GET("", handler.ListPortfolios)
			portfolios.POST("", handler.CreatePortfolio)
			portfolios.GET("/:id", handler.GetPortfolio)
			portfolios.PUT("/:id", handler.UpdatePortfolio)
			portfolios.DELETE("/:id", handler.DeletePortfolio)
		}

		properties := protected.Group("/properties")
		{
			properties.GET("", handler.ListProperties)
			properties.POST("", handler.CreateProperty)
			properties.GET("/:id", handler.GetProperty)
			properties.PUT("/:id", handler.UpdateProperty)
			properties.DELETE("/:id", handler.DeleteProperty)
			properties.POST("/:id/refresh-rentcast", handler.RefreshPropertyRentData)
		}

		stocks := protected.Group("/stocks")
		{
			stocks.GET("", handler.ListStocks)
			stocks.POST("", handler.CreateStock)
			stocks.GET("/:id", handler.GetStock)
			stocks.PUT("/:id", handler.UpdateStock)
			stocks.DELETE("/:id", handler.DeleteStock)
		}

		protected.GET("/dashboard", handler.GetDashboard)
		protected.GET("/integrations/rentcast/preview", handler.PreviewRentData)
	}
}
