package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// --- Response Types ---

// Envelope wraps every catalog response. Code mirrors the HTTP status.
type Envelope struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the failure shape. Payload is always an empty object.
type ErrorEnvelope struct {
	Code    int          `json:"code"`
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Payload struct{}     `json:"payload"`
	Details []FieldIssue `json:"details,omitempty"`
}

// FieldIssue describes one rejected request field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// --- Success Response Helpers ---

// respondPayload sends a 200 envelope carrying data.
func respondPayload(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, Envelope{Code: http.StatusOK, Success: true, Payload: payload})
}

// respondMessage sends a 200 envelope carrying a message instead of data.
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Code: http.StatusOK, Success: true, Message: message})
}

// --- Error Response Helpers ---

// respondError sends a failure envelope with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorEnvelope{Code: status, Error: message})
}

// respondValidationError sends a 422 failure listing the offending fields.
func respondValidationError(c *gin.Context, message string, details []FieldIssue) {
	c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{
		Code:    http.StatusUnprocessableEntity,
		Error:   message,
		Details: details,
	})
}

// respondNotFound sends a 404 failure for the named resource.
func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, resource+" not found")
}

// respondInternalError logs the error and sends a 500 failure.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// respondBindingError turns a gin binding failure into a 422 envelope.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldIssue, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldIssue{Field: jsonFieldName(fe), Message: validationMessage(fe)})
		}
		respondValidationError(c, "invalid request body", details)
		return
	}
	respondValidationError(c, "invalid request body", []FieldIssue{{Field: "body", Message: err.Error()}})
}

func jsonFieldName(fe validator.FieldError) string {
	if name, ok := fieldNames[fe.Field()]; ok {
		return name
	}
	return fe.Field()
}

var fieldNames = map[string]string{
	"Title":           "title",
	"Author":          "author",
	"ISBN":            "isbn",
	"PublicationYear": "publication_year",
	"Status":          "status",
	"CheckOutDate":    "check_out_date",
	"DueDate":         "due_date",
	"IssuedTo":        "issued_to",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "required":
		return "is required"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// A malformed ID cannot name an existing record, so it responds 404.
func parseIDParam(c *gin.Context, paramName, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondNotFound(c, resource)
		return 0, false
	}
	return uint(id), true
}

// parseQueryInt reads an optional integer query parameter.
// Returns nil when absent or blank; responds 422 and reports false when malformed.
func parseQueryInt(c *gin.Context, paramName string) (*int, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondValidationError(c, "invalid "+paramName, []FieldIssue{{Field: paramName, Message: "must be an integer"}})
		return nil, false
	}
	return &v, true
}

// queryIntDefault reads an integer query parameter, falling back to def when
// absent or malformed.
func queryIntDefault(c *gin.Context, paramName string, def int) int {
	v, err := strconv.Atoi(c.Query(paramName))
	if err != nil {
		return def
	}
	return v
}

// respondAccepted sends a 202 envelope for work handed to the task queue.
func respondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, Envelope{Code: http.StatusAccepted, Success: true, Payload: payload})
}
