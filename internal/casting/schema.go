// Package casting moves domain-typed values in and out of flat storage rows.
//
// A Schema holds one typed Codec per field plus optional composite codecs
// that spread one domain field over several storage columns. Serialize and
// Deserialize always build a new Record: fields without a codec are copied
// through unchanged and the input is never mutated.
package casting

import (
	"fmt"
	"reflect"
)

// Record is a flat set of named values, either domain-typed or storage-typed.
type Record map[string]interface{}

// Codec converts a single field between its domain type D and storage type S.
type Codec[D, S any] interface {
	Serialize(D) (S, error)
	Deserialize(S) (D, error)
}

// Funcs adapts a pair of functions into a Codec.
type Funcs[D, S any] struct {
	To   func(D) (S, error)
	From func(S) (D, error)
}

func (f Funcs[D, S]) Serialize(v D) (S, error)   { return f.To(v) }
func (f Funcs[D, S]) Deserialize(v S) (D, error) { return f.From(v) }

// CastError reports a value that does not match the codec registered for it.
type CastError struct {
	Schema    string
	Field     string
	Direction string
	Err       error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("casting %s.%s (%s): %v", e.Schema, e.Field, e.Direction, e.Err)
}

func (e *CastError) Unwrap() error { return e.Err }

type fieldCodec interface {
	serialize(v interface{}) (interface{}, error)
	deserialize(v interface{}) (interface{}, error)
}

type typedField[D, S any] struct {
	codec Codec[D, S]
}

func (f typedField[D, S]) serialize(v interface{}) (interface{}, error) {
	d, ok := assertValue[D](v)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %T", typeName[D](), v)
	}
	return f.codec.Serialize(d)
}

func (f typedField[D, S]) deserialize(v interface{}) (interface{}, error) {
	s, ok := assertValue[S](v)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %T", typeName[S](), v)
	}
	return f.codec.Deserialize(s)
}

// assertValue converts v to T. A nil v is accepted for nil-able T.
func assertValue[T any](v interface{}) (T, bool) {
	var zero T
	if v == nil {
		return zero, nilable(reflect.TypeOf((*T)(nil)).Elem())
	}
	t, ok := v.(T)
	return t, ok
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Option configures a Schema.
type Option func(*Schema)

// Field registers codec for the named field. The storage column keeps the
// field's name.
func Field[D, S any](name string, codec Codec[D, S]) Option {
	return func(s *Schema) {
		if _, dup := s.fields[name]; dup || s.owned[name] {
			panic(fmt.Sprintf("casting: field %q registered twice in schema %q", name, s.name))
		}
		s.fields[name] = typedField[D, S]{codec: codec}
	}
}

// WithComposite registers a codec that expands one domain field into several
// storage columns.
func WithComposite(c Composite) Option {
	return func(s *Schema) {
		if _, dup := s.fields[c.Field()]; dup || s.owned[c.Field()] {
			panic(fmt.Sprintf("casting: field %q registered twice in schema %q", c.Field(), s.name))
		}
		s.composites = append(s.composites, c)
		s.owned[c.Field()] = true
		for _, col := range c.Columns() {
			s.owned[col] = true
		}
	}
}

// Schema is an immutable set of field codecs. It is safe for concurrent use.
type Schema struct {
	name       string
	fields     map[string]fieldCodec
	composites []Composite
	owned      map[string]bool
}

// NewSchema builds a schema. Registering a field twice panics.
func NewSchema(name string, opts ...Option) *Schema {
	s := &Schema{
		name:   name,
		fields: make(map[string]fieldCodec),
		owned:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the schema name used in errors.
func (s *Schema) Name() string { return s.name }

// Serialize converts a domain record into a storage row.
func (s *Schema) Serialize(rec Record) (Record, error) {
	out := make(Record, len(rec)+len(s.composites))
	for k, v := range rec {
		if s.owned[k] {
			continue
		}
		fc, ok := s.fields[k]
		if !ok {
			out[k] = v
			continue
		}
		sv, err := fc.serialize(v)
		if err != nil {
			return nil, &CastError{Schema: s.name, Field: k, Direction: "serialize", Err: err}
		}
		out[k] = sv
	}

	for _, c := range s.composites {
		v, present := rec[c.Field()]
		cols, err := c.Expand(v, present)
		if err != nil {
			return nil, &CastError{Schema: s.name, Field: c.Field(), Direction: "serialize", Err: err}
		}
		for _, col := range c.Columns() {
			out[col] = cols[col]
		}
	}
	return out, nil
}

// Deserialize converts a storage row into a domain record.
func (s *Schema) Deserialize(row Record) (Record, error) {
	out := make(Record, len(row))
	for k, v := range row {
		if s.owned[k] {
			continue
		}
		fc, ok := s.fields[k]
		if !ok {
			out[k] = v
			continue
		}
		dv, err := fc.deserialize(v)
		if err != nil {
			return nil, &CastError{Schema: s.name, Field: k, Direction: "deserialize", Err: err}
		}
		out[k] = dv
	}

	for _, c := range s.composites {
		cols := make(Record, len(c.Columns()))
		for _, col := range c.Columns() {
			cols[col] = row[col]
		}
		v, err := c.Collapse(cols)
		if err != nil {
			return nil, &CastError{Schema: s.name, Field: c.Field(), Direction: "deserialize", Err: err}
		}
		out[c.Field()] = v
	}
	return out, nil
}

// Values returns the named entries of rec in order, for use as query
// arguments. A missing name is an error.
func Values(rec Record, names ...string) ([]interface{}, error) {
	args := make([]interface{}, len(names))
	for i, name := range names {
		v, ok := rec[name]
		if !ok {
			return nil, fmt.Errorf("casting: column %q missing from row", name)
		}
		args[i] = v
	}
	return args, nil
}

// Get returns rec[name] as T.
func Get[T any](rec Record, name string) (T, error) {
	raw, present := rec[name]
	if !present {
		var zero T
		return zero, fmt.Errorf("casting: field %q missing from record", name)
	}
	v, ok := assertValue[T](raw)
	if !ok {
		return v, fmt.Errorf("casting: field %q is %T, want %s", name, raw, typeName[T]())
	}
	return v, nil
}
