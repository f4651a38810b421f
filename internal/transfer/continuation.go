package transfer

// PageToken is an opaque continuation marker produced by an exporter.
//
// A token is scoped to the exporter and resource type that produced it;
// handing it to another exporter or resource type is a contract violation
// the exporter is free to fail on. The engine never inspects token contents.
type PageToken string

// Resource identifies a container discovered during export, e.g. an album
// or a calendar. The zero value is never used; the job root is represented
// by the absence of a Resource in an [ExportRequest].
type Resource struct {
	Type string // resource type tag, scoped to the exporter
	ID   string // source-side identifier
	Name string // display name, informational only
}

// ExportRequest selects what an exporter should produce next.
//
// Both fields empty means "start of job, root resource". A Token without a
// Resource continues the root listing; a Resource without a Token starts a
// child branch from its first page.
type ExportRequest struct {
	Token    PageToken
	Resource *Resource
}

// ContinuationData is the "what's left to do" output of one export call:
// the next page of the current resource, if any, and the child resources
// discovered on this page, in discovery order.
//
// Values are immutable once constructed. An empty ContinuationData (no
// token, no children) signals the branch is fully drained; a nil
// *ContinuationData means the same thing.
type ContinuationData struct {
	next     PageToken
	children []Resource
}

// NewContinuationData constructs a ContinuationData from an optional next
// token and zero or more child resources.
func NewContinuationData(next PageToken, children ...Resource) *ContinuationData {
	cd := &ContinuationData{next: next}
	if len(children) > 0 {
		cd.children = make([]Resource, len(children))
		copy(cd.children, children)
	}
	return cd
}

// NextToken returns the token for the next page of the current resource,
// or the empty token if this was the last page.
func (c *ContinuationData) NextToken() PageToken {
	if c == nil {
		return ""
	}
	return c.next
}

// Children returns the child resources discovered on this page, in
// discovery order. The returned slice is a copy.
func (c *ContinuationData) Children() []Resource {
	if c == nil || len(c.children) == 0 {
		return nil
	}
	out := make([]Resource, len(c.children))
	copy(out, c.children)
	return out
}

// IsEmpty reports whether the branch is fully drained.
func (c *ContinuationData) IsEmpty() bool {
	return c == nil || (c.next == "" && len(c.children) == 0)
}
