package openapi

import (
	"fmt"
	"strings"

	"github.com/reoring/apireview"
)

// Validator checks a source document. A nil error means valid; findings are
// returned as apireview.Issues.
type Validator interface {
	Validate(text []byte) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(text []byte) error

func (f ValidatorFunc) Validate(text []byte) error { return f(text) }

// Methods lists the operation keys of a path item, in the order routes are
// emitted.
var Methods = []string{"get", "post", "put", "patch", "delete", "options", "head"}

var parameterLocations = map[string]bool{"path": true, "query": true, "header": true, "cookie": true}

// StructuralValidator checks the parts of an OpenAPI 3.x document the review
// board relies on: version, info, paths, operations, responses, parameters,
// operationId uniqueness and local $ref targets. It does not validate schema
// keywords.
type StructuralValidator struct{}

func (StructuralValidator) Validate(text []byte) error {
	doc, err := ReadDocument(text)
	if err != nil {
		return apireview.Issues{{Path: "/", Code: apireview.CodeParseError, Message: err.Error()}}
	}
	v := &structuralCheck{root: doc}
	v.run()
	if len(v.issues) == 0 {
		return nil
	}
	return v.issues
}

type structuralCheck struct {
	root   *Object
	issues apireview.Issues
}

func (c *structuralCheck) add(path, code, format string, a ...any) {
	c.issues = append(c.issues, apireview.Issue{Path: path, Code: code, Message: fmt.Sprintf(format, a...)})
}

func (c *structuralCheck) run() {
	doc := c.root
	version, hasVersion := doc.Get("openapi")
	vs, _ := version.(string)
	switch {
	case !hasVersion && doc.Has("swagger"):
		c.add("/swagger", apireview.CodeUnsupported, "Swagger 2.0 documents are not supported")
	case !hasVersion:
		c.add("/openapi", apireview.CodeMissingField, "openapi version is required")
	case vs == "":
		c.add("/openapi", apireview.CodeInvalidType, "openapi version must be a string")
	case !strings.HasPrefix(vs, "3."):
		c.add("/openapi", apireview.CodeUnsupported, "unsupported openapi version %q", vs)
	}

	info := doc.Obj("info")
	if info == nil {
		c.add("/info", apireview.CodeMissingField, "info object is required")
	} else {
		if _, ok := info.Get("title"); !ok {
			c.add("/info/title", apireview.CodeMissingField, "info.title is required")
		}
		if _, ok := info.Get("version"); !ok {
			c.add("/info/version", apireview.CodeMissingField, "info.version is required")
		}
	}

	c.checkPaths(strings.HasPrefix(vs, "3.0"))
	c.checkRefs(doc, "")
}

func (c *structuralCheck) checkPaths(required bool) {
	raw, ok := c.root.Get("paths")
	if !ok {
		if required {
			c.add("/paths", apireview.CodeMissingField, "paths object is required")
		}
		return
	}
	paths, ok := raw.(*Object)
	if !ok {
		c.add("/paths", apireview.CodeInvalidType, "paths must be an object")
		return
	}
	opIDs := map[string]string{}
	for _, p := range paths.keys {
		base := "/paths/" + escapePointer(p)
		if !strings.HasPrefix(p, "/") {
			c.add(base, apireview.CodeInvalidValue, "path %q must begin with '/'", p)
		}
		item, ok := paths.vals[p].(*Object)
		if !ok {
			c.add(base, apireview.CodeInvalidType, "path item must be an object")
			continue
		}
		c.checkParameters(item.List("parameters"), base+"/parameters")
		for _, m := range Methods {
			raw, ok := item.Get(m)
			if !ok {
				continue
			}
			opPath := base + "/" + m
			op, ok := raw.(*Object)
			if !ok {
				c.add(opPath, apireview.CodeInvalidType, "operation must be an object")
				continue
			}
			if id := op.Str("operationId"); id != "" {
				if prev, dup := opIDs[id]; dup {
					c.add(opPath+"/operationId", apireview.CodeDuplicateOpID, "operationId %q already used at %s", id, prev)
				} else {
					opIDs[id] = opPath
				}
			}
			c.checkParameters(op.List("parameters"), opPath+"/parameters")
			resp, ok := op.Get("responses")
			if !ok {
				if required {
					c.add(opPath+"/responses", apireview.CodeMissingField, "responses are required")
				}
				continue
			}
			if ro, ok := resp.(*Object); !ok || ro.Len() == 0 {
				c.add(opPath+"/responses", apireview.CodeInvalidValue, "responses must be a non-empty object")
			}
		}
	}
}

func (c *structuralCheck) checkParameters(params []any, base string) {
	for i, raw := range params {
		at := fmt.Sprintf("%s/%d", base, i)
		p, ok := raw.(*Object)
		if !ok {
			c.add(at, apireview.CodeInvalidType, "parameter must be an object")
			continue
		}
		if _, isRef := p.Ref(); isRef {
			continue
		}
		if p.Str("name") == "" {
			c.add(at+"/name", apireview.CodeInvalidParameter, "parameter name is required")
		}
		if in := p.Str("in"); !parameterLocations[in] {
			c.add(at+"/in", apireview.CodeInvalidParameter, "parameter location %q is not one of path, query, header, cookie", in)
		}
	}
}

func (c *structuralCheck) checkRefs(v any, at string) {
	switch t := v.(type) {
	case *Object:
		if ref, ok := t.Ref(); ok {
			ptr, local := localPointer(ref)
			if !local {
				c.add(at+"/$ref", apireview.CodeUnresolvedRef, "external reference %q is not supported", ref)
			} else if _, found := lookupPointer(c.root, ptr); !found {
				c.add(at+"/$ref", apireview.CodeUnresolvedRef, "reference %q does not resolve", ref)
			}
		}
		for _, k := range t.keys {
			if k == "$ref" {
				continue
			}
			c.checkRefs(t.vals[k], at+"/"+escapePointer(k))
		}
	case []any:
		for i := range t {
			c.checkRefs(t[i], fmt.Sprintf("%s/%d", at, i))
		}
	}
}
