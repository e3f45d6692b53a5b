package openapi

import (
	"strconv"
	"strings"

	"github.com/reoring/apireview"
)

func (n *normalizer) schemas(doc *Object) *apireview.SchemaTable {
	comps := doc.Obj("components").Obj("schemas")
	rawComps := n.raw.Obj("components").Obj("schemas")
	out := make([]*apireview.Schema, 0, comps.Len())
	for _, name := range comps.Keys() {
		ptr := "#/components/schemas/" + escapePointer(name)
		schema, _ := comps.Get(name)
		rawSchema, _ := rawComps.Get(name)
		fs := fieldSpec{name: name, loc: apireview.LocationRequest, ptr: ptr}
		var root *apireview.FieldNode
		if ro, _ := rawSchema.(*Object); ro.IsBareRef() {
			ref, _ := ro.Ref()
			fs.name = "schema-" + name
			root = n.refNode(refName(ref), fs)
			root.Name, root.DisplayName = name, name
		} else {
			root = n.field(schema, rawSchema, fs)
		}
		out = append(out, &apireview.Schema{Name: name, Root: root})
	}
	return apireview.NewSchemaTable(out...)
}

func (n *normalizer) routes(doc *Object) []*apireview.Route {
	paths := doc.Obj("paths")
	rawPaths := n.raw.Obj("paths")
	var routes []*apireview.Route
	for _, path := range paths.Keys() {
		item := paths.Obj(path)
		rawItem := n.rawView(rawPaths.Obj(path))
		for _, method := range Methods {
			op := item.Obj(method)
			if op == nil {
				continue
			}
			rawOp := rawItem.Obj(method)
			opID := op.Str("operationId")
			if opID == "" {
				opID = method + "_" + path
			}
			base := "#/paths/" + escapePointer(path) + "/" + method
			routes = append(routes, &apireview.Route{
				ID:          apireview.NextID("route-" + opID),
				Path:        path,
				Method:      method,
				OperationID: opID,
				Summary:     op.Str("summary"),
				Description: op.Str("description"),
				PathPrefix:  PathPrefix(path),
				Parameters:  n.parameters(op, rawOp, base+"/parameters"),
				RequestBody: n.requestBody(op.Obj("requestBody"), n.rawView(rawOp.Obj("requestBody")), base+"/requestBody"),
				Responses:   n.responses(op.Obj("responses"), n.rawView(rawOp.Obj("responses")), base+"/responses"),
			})
		}
	}
	return routes
}

// parameters normalizes operation parameters. Path-item level parameters are
// not merged into the operation.
func (n *normalizer) parameters(op, rawOp *Object, base string) []*apireview.FieldNode {
	params := op.List("parameters")
	rawParams := rawOp.List("parameters")
	out := make([]*apireview.FieldNode, 0, len(params))
	for i, p := range params {
		po, _ := p.(*Object)
		if po == nil {
			continue
		}
		var rp *Object
		if i < len(rawParams) {
			rp, _ = rawParams[i].(*Object)
		}
		rp = n.rawView(rp)
		schema, ok := po.Get("schema")
		if !ok {
			schema = NewObject(0)
		}
		rawSchema, _ := rp.Get("schema")
		required, _ := po.Bool("required")
		node := n.field(schema, rawSchema, fieldSpec{
			name:     po.Str("name"),
			required: required,
			loc:      apireview.LocationParameter,
			ptr:      base + "/" + strconv.Itoa(i),
		})
		node.ParameterIn = apireview.ParameterIn(po.Str("in"))
		if d := po.Str("description"); d != "" {
			node.Description = d
		}
		out = append(out, node)
	}
	return out
}

func (n *normalizer) requestBody(body, rawBody *Object, base string) *apireview.RequestBody {
	content := body.Obj("content")
	if content == nil {
		return nil
	}
	mediaType := "application/json"
	if keys := content.Keys(); len(keys) > 0 {
		mediaType = keys[0]
	}
	media := content.Obj(mediaType)
	schema, ok := media.Get("schema")
	if !ok {
		return nil
	}
	rawSchema, _ := rawBody.Obj("content").Obj(mediaType).Get("schema")
	required, _ := body.Bool("required")
	return &apireview.RequestBody{
		Required:  required,
		MediaType: mediaType,
		Schema: n.field(schema, rawSchema, fieldSpec{
			name: "body",
			loc:  apireview.LocationRequest,
			ptr:  base + "/content/" + escapePointer(mediaType) + "/schema",
		}),
	}
}

func (n *normalizer) responses(resps, rawResps *Object, base string) []*apireview.Response {
	out := make([]*apireview.Response, 0, resps.Len())
	for _, code := range resps.Keys() {
		resp := resps.Obj(code)
		rawResp := n.rawView(rawResps.Obj(code))
		entry := &apireview.Response{StatusCode: code, Description: resp.Str("description")}
		if content := resp.Obj("content"); content != nil {
			if keys := content.Keys(); len(keys) > 0 {
				entry.MediaType = keys[0]
				if schema, ok := content.Obj(keys[0]).Get("schema"); ok {
					rawSchema, _ := rawResp.Obj("content").Obj(keys[0]).Get("schema")
					entry.Schema = n.field(schema, rawSchema, fieldSpec{
						name: "response",
						loc:  apireview.LocationResponse,
						ptr:  base + "/" + escapePointer(code) + "/content/" + escapePointer(keys[0]) + "/schema",
					})
				}
			}
		}
		out = append(out, entry)
	}
	return out
}

// PathPrefix drops the last segment of path: "/v1/sessions/{id}" groups
// under "/v1/sessions". Single-segment paths are their own prefix.
func PathPrefix(path string) string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) <= 1 {
		return "/" + strings.Join(segs, "/")
	}
	return "/" + strings.Join(segs[:len(segs)-1], "/")
}
