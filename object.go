package machinist

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/reglet-dev/machinist/internal/domain/entities"
)

const tagName = "machinist"

// structObject exposes the fields of a struct under construction as
// blueprint attributes.
//
// Attribute names match, in order of preference, a `machinist:"name"` tag,
// the exact field name, or the field name ignoring case. Promoted fields of
// embedded structs are included. Fields tagged `machinist:"-"` are not
// attributes.
type structObject struct {
	ptr  any
	elem reflect.Value
}

func newStructObject(ptr any) (*structObject, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("blueprint target must be a pointer to a struct, got %T", ptr)
	}
	return &structObject{ptr: ptr, elem: v.Elem()}, nil
}

// objectFor wraps ptr, unless it already is an entities.Object.
func objectFor(ptr any) (entities.Object, error) {
	if obj, ok := ptr.(entities.Object); ok {
		return obj, nil
	}
	return newStructObject(ptr)
}

// Ptr returns the wrapped pointer.
func (o *structObject) Ptr() any {
	return o.ptr
}

// Attribute returns the current value of the field matching name.
func (o *structObject) Attribute(name string) (any, bool) {
	field, ok := o.field(name)
	if !ok {
		return nil, false
	}
	return field.Interface(), true
}

// SetAttribute assigns value to the field matching name.
func (o *structObject) SetAttribute(name string, value any) error {
	field, ok := o.field(name)
	if !ok {
		return fmt.Errorf("%s has no attribute %q", o.elem.Type(), name)
	}
	return assign(field, value)
}

// Snapshot returns every exported field keyed by attribute name.
func (o *structObject) Snapshot() map[string]any {
	snapshot := make(map[string]any)
	for _, f := range reflect.VisibleFields(o.elem.Type()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := attributeTag(f)
		if tag == "-" {
			continue
		}
		name := f.Name
		if tag != "" {
			name = tag
		}
		snapshot[name] = o.elem.FieldByIndex(f.Index).Interface()
	}
	return snapshot
}

// As returns a pointer to the part of the object of type t: the object
// itself or one of its embedded structs.
func (o *structObject) As(t reflect.Type) (any, bool) {
	if o.elem.Type() == t {
		return o.ptr, true
	}
	for _, f := range reflect.VisibleFields(o.elem.Type()) {
		if f.Anonymous && f.Type == t {
			return o.elem.FieldByIndex(f.Index).Addr().Interface(), true
		}
	}
	return nil, false
}

func (o *structObject) field(name string) (reflect.Value, bool) {
	if name == "" || name == "-" {
		return reflect.Value{}, false
	}

	t := o.elem.Type()
	fields := reflect.VisibleFields(t)

	for _, f := range fields {
		if f.IsExported() && attributeTag(f) == name {
			return o.elem.FieldByIndex(f.Index), true
		}
	}
	if f, ok := t.FieldByName(name); ok && f.IsExported() && attributeTag(f) != "-" {
		return o.elem.FieldByIndex(f.Index), true
	}
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous && attributeTag(f) != "-" && strings.EqualFold(f.Name, name) {
			return o.elem.FieldByIndex(f.Index), true
		}
	}
	return reflect.Value{}, false
}

// attributeTag returns the attribute name from the field's machinist tag,
// without options. "-" marks a field that is not an attribute.
func attributeTag(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get(tagName), ",")
	return strings.TrimSpace(name)
}

// assign stores value in field, converting it when it is not directly
// assignable.
func assign(field reflect.Value, value any) error {
	if value == nil {
		field.SetZero()
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           field.Addr().Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("cannot assign %T to %s: %w", value, field.Type(), err)
	}
	return nil
}

// viewAs returns the *T a typed recipe expects from obj.
func viewAs[T any](obj entities.Object) (*T, error) {
	if ptr, ok := any(obj).(*T); ok {
		return ptr, nil
	}
	if so, ok := obj.(*structObject); ok {
		if ptr, ok := so.As(reflect.TypeFor[T]()); ok {
			return ptr.(*T), nil
		}
	}
	return nil, fmt.Errorf("recipe for %s cannot run against %T", reflect.TypeFor[T](), obj)
}
