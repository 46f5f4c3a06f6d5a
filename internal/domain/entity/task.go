package entity

import "fmt"

type VariableType string

const (
	VariableTypeString  VariableType = "String"
	VariableTypeInteger VariableType = "Integer"
	VariableTypeLong    VariableType = "Long"
	VariableTypeBoolean VariableType = "Boolean"
	VariableTypeNull    VariableType = "Null"
)

type Variable struct {
	Type  VariableType
	Value any
}

func StringVariable(value string) Variable {
	return Variable{Type: VariableTypeString, Value: value}
}

func IntegerVariable(value int) Variable {
	return Variable{Type: VariableTypeInteger, Value: value}
}

// Variables is the loosely typed variable scope handed over by the engine.
// Everything that reads task input goes through its accessors.
type Variables map[string]Variable

// String returns the named variable rendered as a string. Missing, null and
// empty values are reported as absent.
func (v Variables) String(name string) (string, bool) {
	variable, ok := v[name]
	if !ok || variable.Value == nil || variable.Type == VariableTypeNull {
		return "", false
	}

	var s string
	switch val := variable.Value.(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}

	if s == "" {
		return "", false
	}
	return s, true
}

func (v Variables) StringOr(name, defaultValue string) string {
	if s, ok := v.String(name); ok {
		return s
	}
	return defaultValue
}

type ExternalTask struct {
	ID                string
	TopicName         string
	WorkerID          string
	ProcessInstanceID string
	BusinessKey       string
	Retries           *int
	Variables         Variables
}

// ShortID returns at most the first n characters of the task id.
func (t ExternalTask) ShortID(n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(t.ID)
	if len(runes) <= n {
		return t.ID
	}
	return string(runes[:n])
}
