package config

import "fmt"

// MissingConfigError reports that no ConfigFileName was found at Path.
type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s missing at: %s", ConfigFileName, e.Path)
}

// InvalidYAMLError wraps a YAML parse failure.
type InvalidYAMLError struct {
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("%s is not valid yaml: %v", ConfigFileName, e.Wrapped)
}

// MissingPropertyError reports a required property absent from the config.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s is missing required property: %s", ConfigFileName, e.Property)
}

// InvalidDurationError reports a duration-string property that failed to parse.
type InvalidDurationError struct {
	Property string
	Value    string
	Wrapped  error
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("%s property %s has invalid duration %q: %v", ConfigFileName, e.Property, e.Value, e.Wrapped)
}
