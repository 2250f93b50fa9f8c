package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrColorFormat is returned for colours that are neither a name nor an
// [r, g, b] / [r, g, b, a] array.
var ErrColorFormat = errors.New("wrong color format")

// Color is a CSS colour string. It decodes from "name", [r, g, b] or
// [r, g, b, opacity].
type Color string

// NoColor is emitted where no colour is configured.
const NoColor Color = "none"

func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Color(name)
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %s", ErrColorFormat, data)
	}
	return c.fromParts(parts)
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = Color(node.Value)
		return nil
	case yaml.SequenceNode:
		var parts []float64
		if err := node.Decode(&parts); err != nil {
			return fmt.Errorf("%w: %v", ErrColorFormat, err)
		}
		return c.fromParts(parts)
	default:
		return fmt.Errorf("%w: line %d", ErrColorFormat, node.Line)
	}
}

func (c *Color) fromParts(p []float64) error {
	switch len(p) {
	case 3:
		*c = Color(fmt.Sprintf("rgb(%d,%d,%d)", int(p[0]), int(p[1]), int(p[2])))
	case 4:
		*c = Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", int(p[0]), int(p[1]), int(p[2]),
			strconv.FormatFloat(p[3], 'f', -1, 64)))
	default:
		return fmt.Errorf("%w: %d components", ErrColorFormat, len(p))
	}
	return nil
}
