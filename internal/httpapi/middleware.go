package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/i18n"
	"github.com/reoring/apireview/session"
)

const ctxKeySide = "apireview.side"

// RequireSide validates the :side path parameter and stores it in the
// context. Invalid sides are rejected with 400.
func RequireSide() gin.HandlerFunc {
	return func(c *gin.Context) {
		side := apireview.Side(c.Param("side"))
		if !side.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "side must be v3 or v4", Code: "INVALID_SIDE"})
			return
		}
		c.Set(ctxKeySide, side)
		c.Next()
	}
}

// SideFromContext returns the side stored by RequireSide.
func SideFromContext(c *gin.Context) (apireview.Side, bool) {
	v, ok := c.Get(ctxKeySide)
	if !ok {
		return "", false
	}
	s, ok := v.(apireview.Side)
	return s, ok
}

// RequireLoaded rejects requests with 409 until both documents are loaded.
func RequireLoaded(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.Loaded() {
			c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: session.ErrNotLoaded.Error(), Code: "NOT_LOADED"})
			return
		}
		c.Next()
	}
}

// IssueResponse is one validation finding with a title localized from the
// request's Accept-Language.
type IssueResponse struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// LoadErrorResponse is returned when a document fails to load.
type LoadErrorResponse struct {
	ErrorResponse
	Side   string          `json:"side,omitempty"`
	Stage  string          `json:"stage,omitempty"`
	Issues []IssueResponse `json:"issues,omitempty"`
}

// loadErrorPayload shapes a load failure for JSON responses.
func loadErrorPayload(err error, acceptLanguage string) LoadErrorResponse {
	out := LoadErrorResponse{ErrorResponse: ErrorResponse{Error: err.Error(), Code: "LOAD_FAILED"}}
	var le *apireview.LoadError
	if errors.As(err, &le) {
		out.Side = string(le.Side)
		out.Stage = string(le.Stage)
	}
	if iss, ok := apireview.AsIssues(err); ok {
		tr := i18n.ForLanguage(i18n.Match(acceptLanguage))
		for _, is := range iss {
			out.Issues = append(out.Issues, IssueResponse{
				Path:    is.Path,
				Code:    is.Code,
				Title:   tr.Message(is.Code, nil),
				Message: is.Message,
			})
		}
	}
	return out
}
