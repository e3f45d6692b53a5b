package apireview

// Side identifies which document of the review board a spec belongs to.
type Side string

const (
	SideV3 Side = "v3" // Read-only baseline.
	SideV4 Side = "v4" // Editable candidate.
)

// Editable reports whether specs on this side accept edits. Only v4 does; this
// is fixed policy, not configuration.
func (s Side) Editable() bool { return s == SideV4 }

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool { return s == SideV3 || s == SideV4 }

// FieldLocation records where a field originates in an operation.
type FieldLocation string

const (
	LocationParameter FieldLocation = "parameter"
	LocationRequest   FieldLocation = "request"
	LocationResponse  FieldLocation = "response"
)

// ParameterIn is the OpenAPI parameter location.
type ParameterIn string

const (
	InPath   ParameterIn = "path"
	InQuery  ParameterIn = "query"
	InHeader ParameterIn = "header"
	InCookie ParameterIn = "cookie"
)

// FieldNode is one node of the normalized field tree. Nodes are treated as
// immutable once published: edits build replacement nodes along the path from
// a root and share every untouched subtree by pointer.
//
// Exactly one variant payload is populated for the node's Kind:
// EnumValues (KindEnum), Children (KindObject), Items (KindArray),
// Variants (KindUnion) or RefTarget (KindRef).
type FieldNode struct {
	ID          string
	Name        string
	DisplayName string
	Kind        TypeKind
	// BaseType is the primitive type name for KindPrimitive and KindEnum
	// ("string", "number", "boolean", ...).
	BaseType    string
	TypeSummary string
	Required    bool
	Nullable    bool
	Description string

	EnumValues []string
	Children   []*FieldNode
	Items      *FieldNode
	Variants   []*FieldNode
	RefTarget  string

	Location    FieldLocation
	ParameterIn ParameterIn
	// JSONPointer is provenance into the source document; layout ignores it.
	JSONPointer string
}

// Clone returns a shallow copy of n. Child slices are shared with n and must
// be replaced, not mutated, by the caller.
func (n *FieldNode) Clone() *FieldNode {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Label returns the name shown to reviewers.
func (n *FieldNode) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Name
}

// RequestBody is the first media type of an operation's request body.
type RequestBody struct {
	Required  bool
	MediaType string
	Schema    *FieldNode
}

// Response is one entry of an operation's responses, in document order.
type Response struct {
	StatusCode  string
	Description string
	MediaType   string
	Schema      *FieldNode
}

// Route is one operation (path x method).
type Route struct {
	ID          string
	Path        string
	Method      string
	OperationID string
	Summary     string
	Description string
	// PathPrefix is Path with its last segment removed; used for grouping.
	PathPrefix  string
	Parameters  []*FieldNode
	RequestBody *RequestBody
	Responses   []*Response
}

// Schema is a named schema from components/schemas.
type Schema struct {
	Name string
	Root *FieldNode
}

// ReviewSpec is one normalized document.
type ReviewSpec struct {
	Title   string
	Version string
	Side    Side
	Routes  []*Route
	Schemas *SchemaTable
}

// Editable reports whether the spec may be edited (v4 only).
func (s *ReviewSpec) Editable() bool { return s != nil && s.Side.Editable() }

// RouteCardPair is one operation present in both documents.
type RouteCardPair struct {
	PathPrefix string
	V3         *Route
	V4         *Route
}
