package camunda

import (
	"encoding/json"
	"fmt"

	"fare-rules-worker/internal/domain/entity"
)

type fetchAndLockRequest struct {
	WorkerID             string         `json:"workerId"`
	MaxTasks             int            `json:"maxTasks"`
	UsePriority          bool           `json:"usePriority"`
	AsyncResponseTimeout int64          `json:"asyncResponseTimeout,omitempty"`
	Topics               []topicRequest `json:"topics"`
}

type topicRequest struct {
	TopicName    string   `json:"topicName"`
	LockDuration int64    `json:"lockDuration"`
	Variables    []string `json:"variables,omitempty"`
}

type lockedTask struct {
	ID                string                   `json:"id"`
	TopicName         string                   `json:"topicName"`
	WorkerID          string                   `json:"workerId"`
	ProcessInstanceID string                   `json:"processInstanceId"`
	BusinessKey       string                   `json:"businessKey"`
	Retries           *int                     `json:"retries"`
	Variables         map[string]variableValue `json:"variables"`
}

type variableValue struct {
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
	ValueInfo map[string]any  `json:"valueInfo,omitempty"`
}

type completeRequest struct {
	WorkerID  string                   `json:"workerId"`
	Variables map[string]variableValue `json:"variables,omitempty"`
}

type failureRequest struct {
	WorkerID     string `json:"workerId"`
	ErrorMessage string `json:"errorMessage"`
	ErrorDetails string `json:"errorDetails,omitempty"`
	Retries      int    `json:"retries"`
	RetryTimeout int64  `json:"retryTimeout"`
}

// Error is the engine's REST error body.
type Error struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("camunda: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("camunda: status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

func (t lockedTask) toEntity() (entity.ExternalTask, error) {
	vars := make(entity.Variables, len(t.Variables))
	for name, v := range t.Variables {
		decoded, err := decodeVariable(v)
		if err != nil {
			return entity.ExternalTask{}, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = decoded
	}

	return entity.ExternalTask{
		ID:                t.ID,
		TopicName:         t.TopicName,
		WorkerID:          t.WorkerID,
		ProcessInstanceID: t.ProcessInstanceID,
		BusinessKey:       t.BusinessKey,
		Retries:           t.Retries,
		Variables:         vars,
	}, nil
}

func decodeVariable(v variableValue) (entity.Variable, error) {
	typ := entity.VariableType(v.Type)
	if len(v.Value) == 0 || string(v.Value) == "null" {
		return entity.Variable{Type: typ}, nil
	}

	var value any
	switch typ {
	case entity.VariableTypeString:
		var s string
		if err := json.Unmarshal(v.Value, &s); err != nil {
			return entity.Variable{}, err
		}
		value = s
	case entity.VariableTypeInteger, entity.VariableTypeLong, "Short":
		var n int64
		if err := json.Unmarshal(v.Value, &n); err != nil {
			return entity.Variable{}, err
		}
		value = n
	case entity.VariableTypeBoolean:
		var b bool
		if err := json.Unmarshal(v.Value, &b); err != nil {
			return entity.Variable{}, err
		}
		value = b
	default:
		// Json, Object, Double and friends are kept as decoded JSON.
		if err := json.Unmarshal(v.Value, &value); err != nil {
			return entity.Variable{}, err
		}
	}

	return entity.Variable{Type: typ, Value: value}, nil
}

func encodeVariables(vars entity.Variables) (map[string]variableValue, error) {
	if len(vars) == 0 {
		return nil, nil
	}

	result := make(map[string]variableValue, len(vars))
	for name, v := range vars {
		raw, err := json.Marshal(v.Value)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		result[name] = variableValue{Type: string(v.Type), Value: raw}
	}
	return result, nil
}
