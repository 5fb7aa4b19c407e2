package schema

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/schemat-io/core/internal/catalog"
)

// Compiler compiles a raw JSON-Schema fragment (as stored in a category's
// `schema` catalog entry for a field that opts into JSON-Schema validation
// rather than one of the builtin Types) into a reusable Type. Grounded on
// andyballingall-json-schema-manager/internal/validator/santhosh.go, which
// wraps the same library behind an identical Compiler/Validator split.
type Compiler struct {
	mu sync.Mutex
	c  *jsonschema.Compiler
	n  int
}

// NewCompiler returns a Compiler backed by santhosh-tekuri/jsonschema/v6.
func NewCompiler() *Compiler {
	return &Compiler{c: jsonschema.NewCompiler()}
}

// CompileFragment adds an in-memory schema resource (decoded from JSON)
// and returns a Type whose Validate runs the compiled schema against the
// value's plain JSON form.
func (c *Compiler) CompileFragment(name string, fragment interface{}) (*Type, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	id := fmt.Sprintf("mem://schemat/%s/%d", name, c.n)
	if err := c.c.AddResource(id, fragment); err != nil {
		return nil, fmt.Errorf("schema: adding resource %s: %w", name, err)
	}
	compiled, err := c.c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("schema: compiling %s: %w", name, err)
	}
	return &Type{
		Name: name,
		Validate: func(v catalog.Value) error {
			return compiled.Validate(v.Raw())
		},
	}, nil
}
