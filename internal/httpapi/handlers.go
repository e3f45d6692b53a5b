// Package httpapi serves a review session over HTTP.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
	"github.com/reoring/apireview/edit"
	"github.com/reoring/apireview/jsonschema"
	"github.com/reoring/apireview/session"
)

// Handlers holds the session served by the API.
type Handlers struct {
	sess *session.Session
	log  *slog.Logger
	// viewport for layout snapshots
	viewW, viewH float64
}

// NewHandlers returns handlers over sess.
func NewHandlers(sess *session.Session, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{sess: sess, log: logger, viewW: 1600, viewH: 900}
}

// WithViewport sets the viewport used when fitting layout snapshots.
func (h *Handlers) WithViewport(w, height float64) *Handlers {
	if w > 0 && height > 0 {
		h.viewW, h.viewH = w, height
	}
	return h
}

// NewRouter returns a gin engine with every route registered under /v1.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r.Group("/v1"), h)
	return r
}

// RegisterRoutes registers the review endpoints on rg:
//
//	POST   /load                           load both documents from text
//	GET    /specs/:side                    spec overview
//	GET    /specs/:side/routes/:operationId route with its field trees
//	GET    /specs/:side/schemas/:name      named schema
//	GET    /specs/:side/jsonschema         named schemas as JSON Schema
//	GET    /specs/:side/jsonschema/:name   one schema as JSON Schema
//	GET    /specs/:side/fields/:id         one field
//	POST   /specs/:side/edits              apply an edit (v4 only)
//	GET    /pairs                          paired operations
//	GET    /layout                         laid out board
//	GET    /panel                          side panel
//	POST   /panel/select                   open the panel on a field
//	POST   /panel/drill                    drill into a field
//	POST   /panel/back                     pop a breadcrumb
//	DELETE /panel                          close the panel
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/load", h.HandleLoad)

	specs := rg.Group("/specs/:side", RequireSide(), RequireLoaded(h.sess))
	specs.GET("", h.HandleSpec)
	specs.GET("/routes/:operationId", h.HandleRoute)
	specs.GET("/schemas/:name", h.HandleSchema)
	specs.GET("/fields/:id", h.HandleField)
	specs.GET("/jsonschema", h.HandleComponents)
	specs.GET("/jsonschema/:name", h.HandleJSONSchema)
	specs.POST("/edits", h.HandleEdit)

	loaded := rg.Group("", RequireLoaded(h.sess))
	loaded.GET("/pairs", h.HandlePairs)
	loaded.GET("/layout", h.HandleLayout)

	rg.GET("/panel", h.HandlePanel)
	rg.POST("/panel/select", h.HandleSelect)
	rg.POST("/panel/drill", h.HandleDrill)
	rg.POST("/panel/back", h.HandleBack)
	rg.DELETE("/panel", h.HandleClosePanel)
}

// spec returns the document for the side stored by RequireSide.
func (h *Handlers) spec(c *gin.Context) (*apireview.ReviewSpec, bool) {
	side, _ := SideFromContext(c)
	s := h.sess.Spec(side)
	if s == nil {
		h.fail(c, session.ErrNotLoaded)
		return nil, false
	}
	return s, true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotLoaded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "NOT_LOADED"})
	case errors.Is(err, session.ErrReadOnly):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "READ_ONLY"})
	case errors.Is(err, session.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "FIELD_NOT_FOUND"})
	default:
		h.log.Error("httpapi: request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
	}
}

// LoadRequest carries both documents as YAML or JSON text.
type LoadRequest struct {
	V3 string `json:"v3" binding:"required"`
	V4 string `json:"v4" binding:"required"`
}

// HandleLoad replaces both documents. A failed load leaves the session
// unloaded and reports issues titled in the request's language.
func (h *Handlers) HandleLoad(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if err := h.sess.Load(c.Request.Context(), []byte(req.V3), []byte(req.V4)); err != nil {
		h.log.Info("httpapi: load rejected", slog.Any("error", err))
		c.JSON(http.StatusUnprocessableEntity, loadErrorPayload(err, c.GetHeader("Accept-Language")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": len(h.sess.Pairs())})
}

func (h *Handlers) HandleSpec(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSpec(s))
}

func (h *Handlers) HandleRoute(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	r, found := s.Route(c.Param("operationId"))
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no route with operationId " + c.Param("operationId"), Code: "ROUTE_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, toRoute(r))
}

func (h *Handlers) HandleSchema(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	sc, found := s.Schema(c.Param("name"))
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no schema named " + c.Param("name"), Code: "SCHEMA_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": sc.Name, "root": toField(sc.Root)})
}

func (h *Handlers) HandleField(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	f, found := apireview.FindField(s, c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no field " + c.Param("id"), Code: "FIELD_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, toField(f))
}

// EditRequest describes one edit. Value carries the new name, type, ref
// target, enum value or property name, depending on Op.
type EditRequest struct {
	Op      string `json:"op" binding:"required,oneof=rename changeType toggleRequired toggleNullable changeRefTarget addEnumValue removeEnumValue addProperty removeProperty addVariant removeVariant delete addField"`
	FieldID string `json:"fieldId" binding:"required"`
	Value   string `json:"value"`
	Index   int    `json:"index" binding:"gte=0"`
	// New describes the node created by addProperty, addField and
	// addVariant.
	New *NewField `json:"new"`
}

// NewField is a node to create. Ref wins over Type.
type NewField struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
	Ref  string `json:"ref"`
}

func (n *NewField) node() *apireview.FieldNode {
	if n == nil {
		return nil
	}
	if n.Ref != "" {
		return edit.NewRefField(n.Name, n.Ref)
	}
	t := n.Type
	if t == "" {
		t = "string"
	}
	return edit.NewField(n.Name, t)
}

func (r EditRequest) apply(s *apireview.ReviewSpec) *apireview.ReviewSpec {
	switch r.Op {
	case "rename":
		return edit.RenameField(s, r.FieldID, r.Value)
	case "changeType":
		return edit.ChangeFieldType(s, r.FieldID, r.Value)
	case "toggleRequired":
		return edit.ToggleRequired(s, r.FieldID)
	case "toggleNullable":
		return edit.ToggleNullable(s, r.FieldID)
	case "changeRefTarget":
		return edit.ChangeRefTarget(s, r.FieldID, r.Value)
	case "addEnumValue":
		return edit.AddEnumValue(s, r.FieldID, r.Value)
	case "removeEnumValue":
		return edit.RemoveEnumValue(s, r.FieldID, r.Value)
	case "addProperty":
		return edit.AddObjectProperty(s, r.FieldID, r.New.node())
	case "addField":
		return edit.AddField(s, r.FieldID, r.New.node())
	case "removeProperty":
		return edit.RemoveObjectProperty(s, r.FieldID, r.Value)
	case "addVariant":
		return edit.AddUnionVariant(s, r.FieldID, r.New.node())
	case "removeVariant":
		return edit.RemoveUnionVariant(s, r.FieldID, r.Index)
	case "delete":
		return edit.DeleteField(s, r.FieldID)
	}
	return s
}

func (h *Handlers) HandleEdit(c *gin.Context) {
	side, _ := SideFromContext(c)
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	changed, err := h.sess.Edit(side, req.apply)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Debug("httpapi: edit", slog.String("op", req.Op), slog.String("field", req.FieldID), slog.Bool("changed", changed))
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// HandleComponents exports every named schema as JSON Schema.
func (h *Handlers) HandleComponents(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, jsonschema.Components(s))
}

func (h *Handlers) HandleJSONSchema(c *gin.Context) {
	s, ok := h.spec(c)
	if !ok {
		return
	}
	sc, found := s.Schema(c.Param("name"))
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no schema named " + c.Param("name"), Code: "SCHEMA_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, jsonschema.FromField(sc.Root))
}

func (h *Handlers) HandlePairs(c *gin.Context) {
	pairs := h.sess.Pairs()
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, toPair(p))
	}
	c.JSON(http.StatusOK, out)
}

// HandleLayout lays the current pairs out on a fresh board and returns it.
func (h *Handlers) HandleLayout(c *gin.Context) {
	board := canvas.NewBoard(canvas.WithViewport(h.viewW, h.viewH))
	res, err := h.sess.Layout(board)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("X-Shape-Count", strconv.Itoa(res.ShapeCount))
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	if err := board.WriteJSON(c.Writer); err != nil {
		h.log.Error("httpapi: write layout", slog.Any("error", err))
	}
}

func (h *Handlers) HandlePanel(c *gin.Context) {
	c.JSON(http.StatusOK, toPanel(h.sess.Panel()))
}

type selectRequest struct {
	Side    string `json:"side" binding:"required,oneof=v3 v4"`
	FieldID string `json:"fieldId" binding:"required"`
}

func (h *Handlers) HandleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	st, err := h.sess.Select(apireview.Side(req.Side), req.FieldID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPanel(st))
}

type drillRequest struct {
	FieldID string `json:"fieldId" binding:"required"`
}

func (h *Handlers) HandleDrill(c *gin.Context) {
	var req drillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	st, err := h.sess.DrillInto(req.FieldID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPanel(st))
}

func (h *Handlers) HandleBack(c *gin.Context) {
	c.JSON(http.StatusOK, toPanel(h.sess.Back()))
}

func (h *Handlers) HandleClosePanel(c *gin.Context) {
	h.sess.ClosePanel()
	c.Status(http.StatusNoContent)
}
