package resource

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/railskit/keys"
)

// Instance is one resource value bound to its Class. Fields use the
// client-side (camelCase) key names. An Instance is not safe for
// concurrent mutation.
type Instance struct {
	class    *Class
	fields   map[string]any
	response *Response
}

// Class returns the class the instance belongs to.
func (i *Instance) Class() *Class { return i.class }

// Get returns the field key.
func (i *Instance) Get(key string) any { return i.fields[key] }

// Set sets the field key.
func (i *Instance) Set(key string, value any) { i.fields[key] = value }

// Fields returns a deep copy of the fields.
func (i *Instance) Fields() map[string]any {
	return keys.CloneMap(i.fields)
}

// Response returns the response of the last instance operation, or nil.
func (i *Instance) Response() *Response { return i.response }

// Decode copies the fields into out, matching json struct tags.
func (i *Instance) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(i.fields)
}

// MarshalJSON encodes the fields.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.fields)
}

// URL returns the member URL built from the fields.
func (i *Instance) URL() string {
	return i.class.URL(i)
}

// Create posts the instance to its URL and merges the response into it.
func (i *Instance) Create(ctx context.Context) (*Instance, error) {
	return i.PostAt(ctx, i.URL())
}

// Update puts the instance to its URL and merges the response into it.
func (i *Instance) Update(ctx context.Context) (*Instance, error) {
	return i.PutAt(ctx, i.URL())
}

// Remove deletes the instance at its URL.
func (i *Instance) Remove(ctx context.Context) (*Instance, error) {
	return i.DeleteAt(ctx, i.URL())
}

// Delete is Remove.
func (i *Instance) Delete(ctx context.Context) (*Instance, error) {
	return i.Remove(ctx)
}

// PostAt posts the instance to url.
func (i *Instance) PostAt(ctx context.Context, url string) (*Instance, error) {
	return i.send(ctx, http.MethodPost, url)
}

// PutAt puts the instance to url.
func (i *Instance) PutAt(ctx context.Context, url string) (*Instance, error) {
	return i.send(ctx, http.MethodPut, url)
}

// PatchAt patches the instance at url.
func (i *Instance) PatchAt(ctx context.Context, url string) (*Instance, error) {
	return i.send(ctx, http.MethodPatch, url)
}

// DeleteAt issues a DELETE to url. Fields returned by the server are
// merged; an empty body leaves the instance as it was.
func (i *Instance) DeleteAt(ctx context.Context, url string) (*Instance, error) {
	return i.process(ctx, i.class.call(http.MethodDelete, url, nil, nil))
}

func (i *Instance) send(ctx context.Context, method, url string) (*Instance, error) {
	data := i.class.TransformData(i.fields)
	return i.process(ctx, i.class.call(method, url, data, nil))
}

// process keeps the undecorated data, runs the interceptors and merges
// the resulting object into the instance.
func (i *Instance) process(ctx context.Context, call Call) (*Instance, error) {
	call = Then(call, func(resp *Response) (*Response, error) {
		resp.OriginalData = keys.Clone(resp.Data)
		return resp, nil
	})
	resp, err := i.class.CallInterceptors(call)(ctx)
	if err != nil {
		return nil, err
	}
	i.response = resp
	i.extend(resp.Data)
	return i, nil
}

// extend shallow-copies the fields of data when it is an object.
func (i *Instance) extend(data any) {
	m, ok := data.(map[string]any)
	if !ok {
		return
	}
	for k, v := range m {
		i.fields[k] = v
	}
}
