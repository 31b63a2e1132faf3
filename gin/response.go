package gin

import (
	"net/http"

	mvjson "github.com/fwojciec/multiverse/json"
	"github.com/gin-gonic/gin"
)

// Error codes returned in APIError.Code.
const (
	CodeUnknownUniverse = mvjson.CodeUnknownUniverse
	CodeDetailCount     = mvjson.CodeDetailCount
	CodeValidation      = mvjson.CodeValidation
	CodeGeneration      = mvjson.CodeGeneration
	CodeCanceled        = mvjson.CodeCanceled
	CodeInternal        = mvjson.CodeInternal
)

// APIError describes a failed request. Batch items carry the same shape.
type APIError = mvjson.Error

// ErrorEnvelope wraps an APIError in the response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

var statusByCode = map[string]int{
	CodeUnknownUniverse: http.StatusNotFound,
	CodeDetailCount:     http.StatusUnprocessableEntity,
	CodeValidation:      http.StatusBadRequest,
	CodeCanceled:        http.StatusServiceUnavailable,
	CodeGeneration:      http.StatusBadGateway,
	CodeInternal:        http.StatusInternalServerError,
}

func respondError(c *gin.Context, err error) {
	status, apiErr := classify(err)
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

func classify(err error) (int, APIError) {
	apiErr := mvjson.FromError(err)
	return statusByCode[apiErr.Code], apiErr
}
