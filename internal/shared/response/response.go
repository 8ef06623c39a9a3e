package response

import (
	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		// ceil(total / limit)
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

type ApiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error any             `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: map[string]any{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}

// Abort writes the error envelope and stops the middleware chain.
func Abort(c *gin.Context, status int, errorCode string, message string, details any) {
	Error(c, status, errorCode, message, details)
	c.Abort()
}
