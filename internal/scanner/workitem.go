package scanner

// WorkItem is one request for the worker pool: Method (empty means GET) on
// Path, relative to the requester's base URL.
type WorkItem struct {
	Method string
	Path   string
}
