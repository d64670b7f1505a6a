package restclient

import "strings"

// RequestType is the HTTP method of a RestRequest.
type RequestType int

const (
	// Get requests a resource.
	Get RequestType = iota
	// Post sends a resource.
	Post
	// Delete removes a resource.
	Delete
)

func (t RequestType) httpMethod() string {
	switch t {
	case Post:
		return "POST"
	case Delete:
		return "DELETE"
	default:
		return "GET"
	}
}

// RequestReturnType is the expected content type of a response body.
type RequestReturnType int

const (
	// Txt expects a text/plain body.
	Txt RequestReturnType = iota
	// Json expects an application/json body.
	Json
)

// Path is a parsed REST path. A path "/a/b/c" has depth 3 with entry 0
// "a"; consecutive slashes produce empty entries, grounded on
// Path.hpp/.cpp's getDepth/getEntry contract.
type Path struct {
	raw     string
	entries []string
}

// NewPath parses raw into a Path.
func NewPath(raw string) Path {
	trimmed := strings.Trim(raw, "/")
	var entries []string
	if trimmed != "" {
		entries = strings.Split(trimmed, "/")
	}
	return Path{raw: raw, entries: entries}
}

// String returns the whole stored path.
func (p Path) String() string { return p.raw }

// Depth returns the number of entries in the path.
func (p Path) Depth() int { return len(p.entries) }

// Entry returns the entry at index and true, or "" and false if index is
// out of range.
func (p Path) Entry(index int) (string, bool) {
	if index < 0 || index >= len(p.entries) {
		return "", false
	}
	return p.entries[index], true
}

// RestRequest describes one REST call: its method, path, and optional
// request body. Grounded on RestRequest.hpp/.cpp.
type RestRequest struct {
	Type RequestType
	path Path
	body string

	returnBody string
	returnType RequestReturnType
}

// NewRestRequest constructs a request of the given type against path, with
// an optional body (used for Post).
func NewRestRequest(requestType RequestType, path string, body ...string) RestRequest {
	r := RestRequest{Type: requestType, path: NewPath(path)}
	if len(body) > 0 {
		r.body = body[0]
	}
	return r
}

// Path returns the request's path.
func (r RestRequest) Path() Path { return r.path }

// Body returns the request body, empty for requests with none.
func (r RestRequest) Body() string { return r.body }

// ReturnBody returns the body the handler filled in for the caller. Only
// meaningful on a request passed to a server-side handler; restclient's own
// callers read the response off RestCall instead.
func (r RestRequest) ReturnBody() string { return r.returnBody }

// SetReturnBody sets the handler's response body for a server-side request
// handler. resttest's fixture server writes its responses directly and does
// not call it.
func (r *RestRequest) SetReturnBody(body string) { r.returnBody = body }

// ReturnType returns the format of ReturnBody.
func (r RestRequest) ReturnType() RequestReturnType { return r.returnType }

// SetReturnType sets the format of ReturnBody.
func (r *RestRequest) SetReturnType(t RequestReturnType) { r.returnType = t }
