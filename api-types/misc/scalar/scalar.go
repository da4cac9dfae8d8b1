package scalar

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Scalar is a value of a descriptor column: either a number or a category
// label. The platform does not distinguish them on the wire (JSON number vs
// JSON string), so this type keeps whichever form was received.
type Scalar struct {
	number   float64
	category string
	isNumber bool
}

func Number(v float64) Scalar {
	return Scalar{number: v, isNumber: true}
}

func Category(v string) Scalar {
	return Scalar{category: v}
}

// Number returns the numeric value.
//
// # Returns
//
// - float64: the value, if this Scalar is numeric.
//
// - bool: false if this Scalar holds a category label.
func (s Scalar) Number() (float64, bool) {
	return s.number, s.isNumber
}

// Category returns the category label.
//
// # Returns
//
// - string: the label, if this Scalar is categorical.
//
// - bool: false if this Scalar is numeric.
func (s Scalar) Category() (string, bool) {
	if s.isNumber {
		return "", false
	}
	return s.category, true
}

func (s Scalar) Equal(o Scalar) bool {
	if s.isNumber != o.isNumber {
		return false
	}
	if s.isNumber {
		return s.number == o.number
	}
	return s.category == o.category
}

func (s Scalar) String() string {
	if s.isNumber {
		return strconv.FormatFloat(s.number, 'g', -1, 64)
	}
	return s.category
}

// implement encoding/json.Marshaller
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.isNumber {
		return json.Marshal(s.number)
	}
	return json.Marshal(s.category)
}

// implement encoding/json.Unmarshaller
func (s *Scalar) UnmarshalJSON(b []byte) error {
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*s = Number(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Category(str)
		return nil
	}

	return fmt.Errorf("scalar should be a number or a string: %s", string(b))
}

// implement yaml.Marshaler
func (s Scalar) MarshalYAML() (interface{}, error) {
	if s.isNumber {
		return s.number, nil
	}
	return s.category, nil
}

// implement yaml.Unmarshaler (yaml.v3)
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	var num float64
	if err := node.Decode(&num); err == nil {
		*s = Number(num)
		return nil
	}

	var str string
	if err := node.Decode(&str); err == nil {
		*s = Category(str)
		return nil
	}

	return fmt.Errorf("scalar should be a number or a string: %s", node.Value)
}
