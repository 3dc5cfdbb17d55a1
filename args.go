package machinist

import (
	"fmt"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// Name selects a blueprint.
type Name string

// Master is the default blueprint name.
const Master Name = "master"

// Attrs overrides blueprint attributes for one make call.
type Attrs map[string]any

// call is a decoded make argument list.
type call struct {
	count     *int
	overrides map[string]any
	name      values.BlueprintName
}

// decodeArgs reads, in order, an optional count, an optional blueprint name
// and an optional override map. Anything left over is an error.
func decodeArgs(args []any) (call, error) {
	c := call{name: values.Master()}
	rest := args

	if len(rest) > 0 {
		if n, ok := rest[0].(int); ok {
			if n < 0 {
				return call{}, &entities.ArgumentError{Message: fmt.Sprintf("negative count %d", n), Args: args}
			}
			c.count = &n
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		var raw string
		var ok bool
		switch v := rest[0].(type) {
		case Name:
			raw, ok = string(v), true
		case string:
			raw, ok = v, true
		}
		if ok {
			name, err := values.NewBlueprintName(raw)
			if err != nil {
				return call{}, &entities.ArgumentError{Message: err.Error(), Args: args}
			}
			c.name = name
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		switch v := rest[0].(type) {
		case Attrs:
			c.overrides = v
			rest = rest[1:]
		case map[string]any:
			c.overrides = v
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		return call{}, &entities.ArgumentError{
			Message: fmt.Sprintf("unexpected argument %v (%T)", rest[0], rest[0]),
			Args:    args,
		}
	}
	return c, nil
}

// decodeSingle decodes arguments for a call that builds one instance.
func decodeSingle(args []any) (call, error) {
	c, err := decodeArgs(args)
	if err != nil {
		return call{}, err
	}
	if c.count != nil {
		return call{}, &entities.ArgumentError{Message: "count given to a single-instance make, use MakeN", Args: args}
	}
	return c, nil
}

// decodeCounted decodes arguments for a call that builds count instances.
func decodeCounted(count int, args []any) (call, error) {
	return decodeArgs(append([]any{count}, args...))
}
