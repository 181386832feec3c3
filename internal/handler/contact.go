package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-api/internal/models"
	"portfolio-api/internal/service"
)

// ContactService is the slice of the contact service the handler needs.
type ContactService interface {
	Submit(in service.ContactInput) (models.ContactSubmission, error)
}

// ContactHandler accepts contact-form submissions.
type ContactHandler struct {
	service ContactService
}

// NewContactHandler creates the handler.
func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Submit handles POST /api/contact requests.
func (h *ContactHandler) Submit(c *gin.Context) {
	var in service.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  []service.FieldError{{Field: "body", Message: "malformed JSON body"}},
		})
		return
	}

	submission, err := h.service.Submit(in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Validation error",
				"errors":  verr.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact received",
		"contact": gin.H{"id": submission.ID},
	})
}
