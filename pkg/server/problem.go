package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// 错误码
const (
	codeInvalidRequest   = "invalid_request"
	codeInvalidBudget    = "invalid_budget"
	codeRetrievalFailure = "retrieval_failed"
	codeInternal         = "internal_error"
)

// problem 是 RFC 7807 风格的错误响应体
type problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code"`
}

// respondError 将组装错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cectx.ErrInvalidBudget):
		respondProblem(c, http.StatusBadRequest, codeInvalidBudget, err.Error())
	case errors.Is(err, cectx.ErrRetrievalFailure):
		respondProblem(c, http.StatusBadGateway, codeRetrievalFailure, err.Error())
	default:
		respondProblem(c, http.StatusInternalServerError, codeInternal, err.Error())
	}
}

func respondProblem(c *gin.Context, status int, code, detail string) {
	_ = c.Error(errors.New(detail))
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, problem{
		Status: status,
		Title:  http.StatusText(status),
		Detail: detail,
		Code:   code,
	})
}
