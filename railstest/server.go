package railstest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/inflection"

	"github.com/kbukum/railskit/keys"
	"github.com/kbukum/railskit/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

// Spec describes one resource served by the Server.
type Spec struct {
	// Name is the singular root key, e.g. "person".
	Name string
	// PluralName defaults to the English plural of Name.
	PluralName string
	// Unwrapped disables root wrapping of responses.
	Unwrapped bool
	// Seed records, in snake_case. Records without an "id" get one.
	Seed []map[string]any
}

// RecordedRequest is one request received by the Server.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// JSON decodes the request body, or returns nil when it is empty or not JSON.
func (r RecordedRequest) JSON() any {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil
	}
	return v
}

// Server is a running in-memory API.
type Server struct {
	engine *gin.Engine
	ts     *httptest.Server
	log    *logger.Logger

	mu       sync.Mutex
	stores   map[string]*store
	requests []RecordedRequest
}

// New starts a Server serving specs. Call Close when done.
func New(specs ...Spec) *Server {
	s := &Server{
		engine: gin.New(),
		log:    logger.Nop(),
		stores: make(map[string]*store, len(specs)),
	}
	s.engine.Use(s.recovery(), s.requestID(), s.record())

	for _, spec := range specs {
		if spec.PluralName == "" {
			spec.PluralName = inflection.Plural(spec.Name)
		}
		st := newStore(spec)
		s.stores[spec.Name] = st
		s.mount(st)
	}

	s.ts = httptest.NewServer(s.engine)
	return s
}

// URL returns the base URL, e.g. "http://127.0.0.1:41234".
func (s *Server) URL() string { return s.ts.URL }

// Engine returns the gin engine for extra routes.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Close shuts the server down.
func (s *Server) Close() { s.ts.Close() }

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Records returns a copy of the stored records of the named resource.
func (s *Server) Records(name string) []map[string]any {
	st, ok := s.stores[name]
	if !ok {
		return nil
	}
	return st.list()
}

func (s *Server) mount(st *store) {
	base := "/" + st.spec.PluralName
	s.engine.GET(base, func(c *gin.Context) {
		s.render(c, http.StatusOK, st, st.spec.PluralName, st.list())
	})
	s.engine.GET(base+"/:id", func(c *gin.Context) {
		rec, ok := st.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.render(c, http.StatusOK, st, st.spec.Name, rec)
	})
	s.engine.POST(base, func(c *gin.Context) {
		attrs, ok := s.bind(c, st)
		if !ok {
			return
		}
		s.render(c, http.StatusCreated, st, st.spec.Name, st.create(attrs))
	})
	update := func(c *gin.Context) {
		attrs, ok := s.bind(c, st)
		if !ok {
			return
		}
		rec, found := st.update(c.Param("id"), attrs)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.render(c, http.StatusOK, st, st.spec.Name, rec)
	}
	s.engine.PUT(base+"/:id", update)
	s.engine.PATCH(base+"/:id", update)
	s.engine.DELETE(base+"/:id", func(c *gin.Context) {
		if !st.remove(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// bind reads the attributes nested under the singular root key.
func (s *Server) bind(c *gin.Context, st *store) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	attrs, ok := body[st.spec.Name].(map[string]any)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{st.spec.Name: []string{fmt.Sprintf("param is missing or the value is empty: %s", st.spec.Name)}},
		})
		return nil, false
	}
	return attrs, true
}

func (s *Server) render(c *gin.Context, status int, st *store, root string, data any) {
	if st.spec.Unwrapped {
		c.JSON(status, data)
		return
	}
	c.JSON(status, gin.H{root: data})
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  c.Request.Method,
			Path:    c.Request.URL.Path,
			Query:   c.Request.URL.Query(),
			Headers: c.Request.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprint(err),
					logger.FieldMethod, c.Request.Method,
					logger.FieldURL, c.Request.URL.Path,
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// cloneRecord deep-copies a record so callers never share server state.
func cloneRecord(rec map[string]any) map[string]any {
	return keys.CloneMap(rec)
}
