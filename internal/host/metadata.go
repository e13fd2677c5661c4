package host

// MetaData describes the module to the host.
func MetaData() map[string]any {
	return map[string]any{
		"DisplayName": "Spaceship",
		"APIVersion":  "1.1",
	}
}

// ConfigField is one entry of the module's configuration declaration.
type ConfigField struct {
	Key          string `json:"-"`
	FriendlyName string `json:"FriendlyName,omitempty"`
	Type         string `json:"Type"`
	Value        string `json:"Value,omitempty"`
	Size         string `json:"Size,omitempty"`
	Description  string `json:"Description,omitempty"`
}

// ConfigFields returns the module configuration in declaration order.
func ConfigFields() []ConfigField {
	return []ConfigField{
		{Key: "FriendlyName", Type: "System", Value: "Spaceship Domain Registrar"},
		{Key: "Description", Type: "System", Value: "Register and manage domains using the Spaceship API."},
		{Key: "ApiKey", FriendlyName: "API Key", Type: "text", Size: "50", Description: "Enter your API Key here"},
		{Key: "ApiSecret", FriendlyName: "API Secret", Type: "password", Size: "50", Description: "Enter your API Secret here"},
	}
}

// ConfigArray renders ConfigFields keyed by field name, as the host reads it.
func ConfigArray() map[string]ConfigField {
	fields := ConfigFields()
	out := make(map[string]ConfigField, len(fields))
	for _, f := range fields {
		out[f.Key] = f
	}
	return out
}
