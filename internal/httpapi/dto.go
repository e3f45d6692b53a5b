package httpapi

import (
	"github.com/reoring/apireview"
	"github.com/reoring/apireview/panel"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Field is the wire form of a FieldNode. Refs are not expanded.
type Field struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Kind        string   `json:"typeKind"`
	TypeSummary string   `json:"typeSummary"`
	BaseType    string   `json:"baseType,omitempty"`
	Required    bool     `json:"required"`
	Nullable    bool     `json:"nullable"`
	Description string   `json:"description,omitempty"`
	EnumValues  []string `json:"enumValues,omitempty"`
	Children    []*Field `json:"children,omitempty"`
	Items       *Field   `json:"items,omitempty"`
	Variants    []*Field `json:"variants,omitempty"`
	RefTarget   string   `json:"refTarget,omitempty"`
	Location    string   `json:"location,omitempty"`
	ParameterIn string   `json:"parameterIn,omitempty"`
	JSONPointer string   `json:"jsonPointer,omitempty"`
}

func toField(n *apireview.FieldNode) *Field {
	if n == nil {
		return nil
	}
	return &Field{
		ID:          n.ID,
		Name:        n.Name,
		DisplayName: n.Label(),
		Kind:        n.Kind.String(),
		TypeSummary: n.TypeSummary,
		BaseType:    n.BaseType,
		Required:    n.Required,
		Nullable:    n.Nullable,
		Description: n.Description,
		EnumValues:  n.EnumValues,
		Children:    toFields(n.Children),
		Items:       toField(n.Items),
		Variants:    toFields(n.Variants),
		RefTarget:   n.RefTarget,
		Location:    string(n.Location),
		ParameterIn: string(n.ParameterIn),
		JSONPointer: n.JSONPointer,
	}
}

func toFields(ns []*apireview.FieldNode) []*Field {
	if len(ns) == 0 {
		return nil
	}
	out := make([]*Field, 0, len(ns))
	for _, n := range ns {
		out = append(out, toField(n))
	}
	return out
}

// RouteSummary lists a route without its fields.
type RouteSummary struct {
	ID          string `json:"id"`
	OperationID string `json:"operationId"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	PathPrefix  string `json:"pathPrefix"`
	Summary     string `json:"summary,omitempty"`
}

func toRouteSummary(r *apireview.Route) RouteSummary {
	return RouteSummary{
		ID:          r.ID,
		OperationID: r.OperationID,
		Method:      r.Method,
		Path:        r.Path,
		PathPrefix:  r.PathPrefix,
		Summary:     r.Summary,
	}
}

// Route is the full wire form of a route.
type Route struct {
	RouteSummary
	Description string      `json:"description,omitempty"`
	Parameters  []*Field    `json:"parameters"`
	RequestBody *Body       `json:"requestBody,omitempty"`
	Responses   []*Response `json:"responses"`
}

type Body struct {
	Required  bool   `json:"required"`
	MediaType string `json:"mediaType"`
	Schema    *Field `json:"schema"`
}

type Response struct {
	StatusCode  string `json:"statusCode"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"mediaType,omitempty"`
	Schema      *Field `json:"schema,omitempty"`
}

func toRoute(r *apireview.Route) Route {
	out := Route{
		RouteSummary: toRouteSummary(r),
		Description:  r.Description,
		Parameters:   toFields(r.Parameters),
		Responses:    make([]*Response, 0, len(r.Responses)),
	}
	if out.Parameters == nil {
		out.Parameters = []*Field{}
	}
	if b := r.RequestBody; b != nil {
		out.RequestBody = &Body{Required: b.Required, MediaType: b.MediaType, Schema: toField(b.Schema)}
	}
	for _, resp := range r.Responses {
		out.Responses = append(out.Responses, &Response{
			StatusCode:  resp.StatusCode,
			Description: resp.Description,
			MediaType:   resp.MediaType,
			Schema:      toField(resp.Schema),
		})
	}
	return out
}

// Spec is the overview of one side.
type Spec struct {
	Title    string         `json:"title"`
	Version  string         `json:"version"`
	Side     string         `json:"side"`
	Editable bool           `json:"editable"`
	Routes   []RouteSummary `json:"routes"`
	Schemas  []string       `json:"schemas"`
}

func toSpec(s *apireview.ReviewSpec) Spec {
	out := Spec{
		Title:    s.Title,
		Version:  s.Version,
		Side:     string(s.Side),
		Editable: s.Editable(),
		Routes:   make([]RouteSummary, 0, len(s.Routes)),
		Schemas:  s.Schemas.Names(),
	}
	for _, r := range s.Routes {
		out.Routes = append(out.Routes, toRouteSummary(r))
	}
	return out
}

// Pair is one paired operation.
type Pair struct {
	PathPrefix  string `json:"pathPrefix"`
	OperationID string `json:"operationId"`
	V3          string `json:"v3"`
	V4          string `json:"v4"`
}

func toPair(p apireview.RouteCardPair) Pair {
	return Pair{
		PathPrefix:  p.PathPrefix,
		OperationID: p.V3.OperationID,
		V3:          p.V3.Method + " " + p.V3.Path,
		V4:          p.V4.Method + " " + p.V4.Path,
	}
}

// Panel is the wire form of the side panel.
type Panel struct {
	Open        bool     `json:"open"`
	Side        string   `json:"side,omitempty"`
	Editable    bool     `json:"editable"`
	Current     *Field   `json:"current,omitempty"`
	Breadcrumbs []string `json:"breadcrumbs"`
}

func toPanel(s panel.State) Panel {
	out := Panel{
		Open:        s.IsOpen(),
		Side:        string(s.Side),
		Editable:    s.Editable,
		Current:     toField(s.Current),
		Breadcrumbs: make([]string, 0, len(s.Breadcrumbs)),
	}
	for _, b := range s.Breadcrumbs {
		out.Breadcrumbs = append(out.Breadcrumbs, b.Label)
	}
	return out
}
