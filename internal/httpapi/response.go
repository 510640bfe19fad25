package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/engine"
	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/application"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/schema"
)

type APIError struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// respondDomainError maps engine, store and domain errors onto statuses and
// stable codes. Unknown errors are logged and reported as 500.
func respondDomainError(c *gin.Context, log *logger.Logger, err error) {
	var (
		schemaErr *schema.SchemaError
		validErr  *form.ValidationError
		snapErr   *application.SnapshotError
	)

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: "form schema is invalid",
			Code:    "invalid_schema",
			Fields:  schemaIssues(schemaErr),
		}})
	case errors.As(err, &validErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: "application data is invalid",
			Code:    "invalid_data",
			Fields:  validErr.Payload(),
		}})
	case errors.Is(err, engine.ErrInvalidService):
		RespondError(c, http.StatusUnprocessableEntity, "invalid_service", err)
	case errors.Is(err, store.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, application.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, application.ErrEditingDisabled):
		RespondError(c, http.StatusConflict, "editing_disabled", err)
	case errors.Is(err, application.ErrEditingAlreadyEnabled):
		RespondError(c, http.StatusConflict, "editing_already_enabled", err)
	case errors.Is(err, application.ErrStaleRevision):
		RespondError(c, http.StatusConflict, "stale_revision", err)
	case errors.Is(err, engine.ErrServiceInactive):
		RespondError(c, http.StatusConflict, "service_inactive", err)
	case errors.As(err, &snapErr):
		RespondError(c, http.StatusInternalServerError, "snapshot_failed", errors.New("could not archive the current version; editing was not enabled"))
	default:
		log.Error("Unhandled request error", "path", c.FullPath(), "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}

func schemaIssues(err *schema.SchemaError) map[string][]string {
	out := make(map[string][]string, len(err.Issues))
	for _, issue := range err.Issues {
		key := issue.Field
		if key == "" {
			key = fmt.Sprintf("#%d", issue.Index)
		}
		out[key] = append(out[key], issue.Message)
	}
	return out
}
