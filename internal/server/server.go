// Package server exposes the classification engine over a small HTTP API so
// other tools can preview decisions without moving files.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"archivist/internal/processor"
)

// Server wraps the processor behind read-only HTTP endpoints. No handler
// mutates the knowledge base.
type Server struct {
	proc *processor.Processor
}

func New(proc *processor.Processor) *Server {
	return &Server{proc: proc}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/folders", s.listFolders)
	api.POST("/classify", s.classify)
	api.POST("/preview", s.preview)
	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Infof("serving API on %s", addr)
	return s.Router().Run(addr)
}

func (s *Server) listFolders(c *gin.Context) {
	folders, err := s.proc.KnowledgeBase().Scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if folders == nil {
		folders = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

type classifyRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// classify resolves a target folder for a bare subject string.
func (s *Server) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	folders, err := s.proc.KnowledgeBase().Scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	decision := s.proc.Engine().Resolve(c.Request.Context(), req.Subject, folders)
	c.JSON(http.StatusOK, gin.H{
		"subject":        req.Subject,
		"suggested_path": decision.SuggestedPath,
		"create_new":     decision.CreateNew,
		"reasoning":      decision.Reasoning,
	})
}

type previewRequest struct {
	Path string `json:"path" binding:"required"`
}

// preview runs the full pipeline for a document on disk and returns the plan
// without executing it.
func (s *Server) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := s.proc.Plan(c.Request.Context(), req.Path)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              plan.ID,
		"source_path":     plan.SourcePath,
		"subject":         plan.Subject,
		"date":            plan.Date,
		"date_source":     plan.DateSource,
		"date_confidence": plan.DateConfidence,
		"version":         plan.Version.String(),
		"new_name":        plan.NewName,
		"target_folder":   plan.TargetFolder,
		"target_path":     plan.TargetPath,
		"create_folder":   plan.CreateFolder,
		"reasoning":       plan.Reasoning,
		"warning":         plan.Warning,
	})
}
