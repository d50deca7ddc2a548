package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// assembleRequest 是组装请求体，MaxTokens 为空时使用默认预算，显式 0 视为非法
type assembleRequest struct {
	Query     string `json:"query"`
	ProjectID string `json:"projectId"`
	MaxTokens *int   `json:"maxTokens"`
}

func (r assembleRequest) toQuery(defaultMaxTokens int) cectx.Query {
	maxTokens := defaultMaxTokens
	if r.MaxTokens != nil {
		maxTokens = *r.MaxTokens
	}
	return cectx.Query{
		Text:      r.Query,
		ProjectID: r.ProjectID,
		MaxTokens: maxTokens,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAssemble(c *gin.Context) {
	var req assembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondProblem(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := s.assembler.Assemble(c.Request.Context(), req.toQuery(s.defaultMaxTokens))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleBudget(c *gin.Context) {
	maxTokens := s.defaultMaxTokens
	if raw := c.Query("maxTokens"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondProblem(c, http.StatusBadRequest, codeInvalidRequest, "maxTokens must be an integer")
			return
		}
		maxTokens = n
	}

	budget, err := s.assembler.PreviewBudget(maxTokens)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}
