package casting

import (
	"fmt"
	"reflect"
)

// Composite expands one domain field into several storage columns and
// collapses them back.
type Composite interface {
	Field() string
	Columns() []string
	// Expand returns a value for every column. present is false when the
	// domain record has no entry for the field.
	Expand(value interface{}, present bool) (Record, error)
	Collapse(columns Record) (interface{}, error)
}

// CompositeCodec is a typed Composite built from split and join functions.
//
// When the domain field is absent or nil on serialize, Expand writes the
// registered defaults for every column instead of leaving columns out. This
// is intentional: rows always carry every column. It also means a record
// that forgot to set the field is stored as if it had the default value, so
// callers that need the field to be set must validate before serializing.
type CompositeCodec[D any] struct {
	field    string
	columns  []string
	defaults Record
	split    func(D) (Record, error)
	join     func(Record) (D, error)
}

// NewComposite registers a composite codec for field spread over columns.
// defaults must hold a value for every column.
func NewComposite[D any](field string, columns []string, defaults Record,
	split func(D) (Record, error), join func(Record) (D, error)) *CompositeCodec[D] {
	for _, col := range columns {
		if _, ok := defaults[col]; !ok {
			panic(fmt.Sprintf("casting: composite %q has no default for column %q", field, col))
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &CompositeCodec[D]{field: field, columns: cols, defaults: defaults, split: split, join: join}
}

func (c *CompositeCodec[D]) Field() string { return c.field }

func (c *CompositeCodec[D]) Columns() []string { return c.columns }

func (c *CompositeCodec[D]) Expand(value interface{}, present bool) (Record, error) {
	if !present || isNil(value) {
		return c.Defaults(), nil
	}
	d, ok := value.(D)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %T", typeName[D](), value)
	}
	cols, err := c.split(d)
	if err != nil {
		return nil, err
	}
	for _, col := range c.columns {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("split of %q did not produce column %q", c.field, col)
		}
	}
	return cols, nil
}

func (c *CompositeCodec[D]) Collapse(columns Record) (interface{}, error) {
	return c.join(columns)
}

// Defaults returns a copy of the substitution values.
func (c *CompositeCodec[D]) Defaults() Record {
	out := make(Record, len(c.defaults))
	for k, v := range c.defaults {
		out[k] = v
	}
	return out
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
