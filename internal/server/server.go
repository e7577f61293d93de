// Package server exposes the pipeline over a small HTTP status API.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"go-jobalert/internal/app"
	"go-jobalert/internal/dedup"

	"github.com/gin-gonic/gin"
)

// Runner is the part of app.App the API needs.
type Runner interface {
	RunOnce(ctx context.Context) (*app.RunSummary, error)
	Seen(ctx context.Context) dedup.SeenSet
}

func NewRouter(runner Runner) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job alert API is running!",
			"status":  "healthy",
		})
	})

	api := r.Group("/api")
	api.GET("/seen", func(c *gin.Context) {
		links := runner.Seen(c.Request.Context()).Sorted()
		c.JSON(http.StatusOK, gin.H{
			"count": len(links),
			"links": links,
		})
	})

	api.POST("/run", func(c *gin.Context) {
		summary, err := runner.RunOnce(c.Request.Context())
		switch {
		case errors.Is(err, app.ErrRunInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil && summary == nil:
			log.Printf("❌ Run failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		case err != nil:
			log.Printf("⚠️ Run finished with error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		default:
			c.JSON(http.StatusOK, summary)
		}
	})

	return r
}
