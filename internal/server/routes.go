package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
)

// setupRouter registers middleware and all REST API routes.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(recoveryMiddleware(s.logger))
	router.Use(cors.New(corsConfig(s.app.Config.Server.CORSOrigins)))
	router.Use(correlationIDMiddleware())
	router.Use(requestContextMiddleware())
	router.Use(metricsMiddleware())
	router.Use(loggingMiddleware(s.logger))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.HEAD("/health", s.handleHealth)
		api.GET("/version", s.handleVersion)

		portfolios := api.Group("/portfolios/:id")
		{
			portfolios.GET("/chart", s.handleChart)
			portfolios.GET("/chart.png", s.handleChartPNG)
			portfolios.GET("/value", s.handleValue)
			portfolios.POST("/snapshots", s.handleRecordSnapshot)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) > 0 {
		config.AllowOrigins = origins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID", headerView, headerUser}
	config.ExposeHeaders = []string{"X-Correlation-ID"}
	return config
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
