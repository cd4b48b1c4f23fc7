package resource

// Kind tells what a Result holds.
type Kind int

const (
	// KindValue is response data that is neither an object nor a list.
	KindValue Kind = iota
	// KindInstance is a single object.
	KindInstance
	// KindCollection is a list.
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindInstance:
		return "instance"
	case KindCollection:
		return "collection"
	default:
		return "value"
	}
}

// Result is the materialized outcome of a class-level call.
type Result struct {
	kind      Kind
	instances []*Instance
	value     any
	response  *Response
}

// Kind reports what the result holds.
func (r *Result) Kind() Kind { return r.kind }

// Instance returns the single instance, or nil when r is not KindInstance.
func (r *Result) Instance() *Instance {
	if r.kind != KindInstance {
		return nil
	}
	return r.instances[0]
}

// Instances returns the collection. A single instance is returned as a
// one element slice and a value as nil.
func (r *Result) Instances() []*Instance {
	return r.instances
}

// Value returns the raw data of a KindValue result.
func (r *Result) Value() any { return r.value }

// Response returns the response after all interceptors ran.
func (r *Result) Response() *Response { return r.response }

// MarshalJSON encodes what the result holds.
func (r *Result) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindInstance:
		return r.instances[0].MarshalJSON()
	case KindCollection:
		return marshalInstances(r.instances)
	default:
		return marshalValue(r.value)
	}
}
