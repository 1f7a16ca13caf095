package routes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type document struct {
	Routes []Route `yaml:"routes"`
}

// Load decodes a YAML route document and compiles it.
//
//	routes:
//	  - path: /dashboard
//	    view: dashboard
//	    meta: {requiresAuth: true}
//	  - path: /:catchAll(.*)*
//	    view: not-found
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCatchAll
		}
		return nil, fmt.Errorf("routes: decode: %w", err)
	}
	return Compile(doc.Routes)
}

// LoadBytes is Load for an in-memory document.
func LoadBytes(b []byte) (*Table, error) {
	return Load(bytes.NewReader(b))
}

// LoadFile loads and compiles the route document at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}
