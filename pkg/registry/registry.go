// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for the given task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("task type %q not in registry", taskType)
}

// TaskTypes lists every registered task type in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	types := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		types = append(types, a.TaskType)
	}
	return types
}
