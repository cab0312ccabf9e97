package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/learnhub/internal/pkg/validation"
)

const validatedBodyKey = "validatedBody"

// ValidateRequest decodes the JSON body, checks it against rules and stores
// the normalized payload for the handler. Bodies that are not JSON objects
// count as empty.
func ValidateRequest(rules validation.RuleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := validation.Payload{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			payload = validation.Payload{}
		}

		validated, err := rules.Validate(c.Request.Context(), payload)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(validatedBodyKey, validated)
		c.Next()
	}
}

// ValidatedPayload returns the payload stored by ValidateRequest.
func ValidatedPayload(c *gin.Context) validation.Payload {
	if v, ok := c.Get(validatedBodyKey); ok {
		if payload, ok := v.(validation.Payload); ok {
			return payload
		}
	}
	return validation.Payload{}
}
