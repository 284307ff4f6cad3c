package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed data/catalog.schema.json
var schemaData []byte

var (
	compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	})
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Schema returns the raw JSON Schema of catalog documents.
func Schema() []byte {
	return append([]byte(nil), schemaData...)
}

func checkSchema(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("catalog schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	aggr := &AggregateError{}
	for _, re := range result.Errors() {
		aggr.Errors = append(aggr.Errors, &IntegrityError{Where: re.Field(), Reason: re.Description()})
	}
	return aggr
}

func checkStruct(doc *document) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("catalog validation: %w", err)
	}
	aggr := &AggregateError{}
	for _, fe := range verrs {
		reason := "failed '" + fe.Tag() + "'"
		if fe.Param() != "" {
			reason += " (" + fe.Param() + ")"
		}
		aggr.Errors = append(aggr.Errors, &IntegrityError{Where: fe.Namespace(), Reason: reason})
	}
	return aggr
}

// checkIntegrity verifies every reference resolves.
func (c *Catalog) checkIntegrity() error {
	var errs []error
	add := func(where, format string, args ...any) {
		errs = append(errs, &IntegrityError{Where: where, Reason: fmt.Sprintf(format, args...)})
	}

	if len(c.categoryIndex) != len(c.categories) {
		add("categories", "duplicate category id")
	}
	if len(c.nodeIndex) != len(c.nodes) {
		add("nodes", "duplicate node id")
	}
	if len(c.flowIndex) != len(c.flows) {
		add("flows", "duplicate flow id")
	}

	for i, n := range c.nodes {
		if _, ok := c.categoryIndex[n.Category]; !ok {
			add(fmt.Sprintf("nodes[%s]", n.ID), "unknown category %q (index %d)", n.Category, i)
		}
	}

	for i, l := range c.links {
		where := fmt.Sprintf("links[%d]", i)
		if _, ok := c.nodeIndex[l.Source]; !ok {
			add(where, "unknown source %q", l.Source)
		}
		if _, ok := c.nodeIndex[l.Target]; !ok {
			add(where, "unknown target %q", l.Target)
		}
	}

	for _, f := range c.flows {
		steps := make(map[string]bool, len(f.Steps))
		for j, s := range f.Steps {
			where := fmt.Sprintf("flows[%s].steps[%d]", f.ID, j)
			if steps[s.ID] {
				add(where, "duplicate step id %q", s.ID)
			}
			steps[s.ID] = true
			if _, ok := c.nodeIndex[s.FullID]; !ok {
				add(where, "unknown node %q", s.FullID)
			}
		}
		for j, l := range f.Links {
			where := fmt.Sprintf("flows[%s].links[%d]", f.ID, j)
			if !steps[l.Source] {
				add(where, "unknown step %q", l.Source)
			}
			if !steps[l.Target] {
				add(where, "unknown step %q", l.Target)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
