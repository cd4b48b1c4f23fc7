// Package railstest runs an in-memory Rails-style JSON API for tests.
//
// Each Spec mounts the usual resource routes under /{plural}. Request
// bodies must be wrapped in the singular root key and responses are
// root-wrapped snake_case JSON, the same shape a Rails controller
// renders. Every request is recorded for later assertions.
//
//	srv := railstest.New(railstest.Spec{Name: "person"})
//	defer srv.Close()
//	adapter, _ := transport.New(transport.Config{BaseURL: srv.URL()})
package railstest
