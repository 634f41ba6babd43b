package models

import (
	"fmt"
	"strings"

	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Endpoint configuration keys understood by the provisioning engine.
const (
	ConfigKeyMultiOpPatchAddMembers = "MultiOpPatchRequestAddMultipleMembersToGroup"
	ConfigKeyAllowRemoveAllMembers  = "PatchOpAllowRemoveAllMembers"
	ConfigKeyVerbosePatchSupported  = "VerbosePatchSupported"
	ConfigKeyLogLevel               = "logLevel"
)

var knownLogLevels = map[string]struct{}{
	"TRACE": {}, "DEBUG": {}, "INFO": {}, "WARN": {}, "ERROR": {},
}

// EndpointConfig holds the per-tenant configuration map. Values arrive as
// JSON strings or booleans from the admin API.
type EndpointConfig map[string]interface{}

// BoolValue interprets a config entry as a boolean flag. Truthy values are
// JSON true, the JSON number 1, and the strings "true" (in any letter case)
// and "1"; everything else, including a missing key, is false.
func (c EndpointConfig) BoolValue(key string) bool {
	raw, ok := c[key]
	if !ok {
		return false
	}

	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true
		}
	case float64:
		return v == 1
	}

	return false
}

// LogLevel returns the per-tenant log level override, or the empty string.
func (c EndpointConfig) LogLevel() string {
	raw, ok := c[ConfigKeyLogLevel]
	if !ok {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int(v))
	}

	return ""
}

// Endpoint represents an isolated SCIM service-provider instance (a tenant).
type Endpoint struct {
	Name        string
	DisplayName string
	Description string
	Config      EndpointConfig
	Active      bool
	Metadata    ResourceMetadata
}

// Validate returns an error if the model is not valid
func (e *Endpoint) Validate() error {
	if err := verifyValidEndpointName(e.Name); err != nil {
		return err
	}

	if err := verifyValidDescription(e.Description); err != nil {
		return err
	}

	return e.validateConfig()
}

// validateConfig rejects unknown value spellings for the known config keys.
// Unknown keys are allowed so operators can stash annotations on a tenant.
func (e *Endpoint) validateConfig() error {
	for key, raw := range e.Config {
		switch key {
		case ConfigKeyMultiOpPatchAddMembers, ConfigKeyAllowRemoveAllMembers, ConfigKeyVerbosePatchSupported:
			if !isValidBoolSetting(raw) {
				return errors.New(
					"invalid value for config key %s: must be a boolean or one of \"True\", \"False\", \"true\", \"false\", \"1\", \"0\"", key,
					errors.WithErrorCode(errors.EInvalid),
					errors.WithSCIMType(errors.SCIMTypeInvalidValue),
				)
			}
		case ConfigKeyLogLevel:
			if !isValidLogLevelSetting(raw) {
				return errors.New(
					"invalid value for config key %s: must be TRACE, DEBUG, INFO, WARN, ERROR or a numeric level", key,
					errors.WithErrorCode(errors.EInvalid),
					errors.WithSCIMType(errors.SCIMTypeInvalidValue),
				)
			}
		}
	}

	return nil
}

func isValidBoolSetting(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(v) {
		case "true", "false", "1", "0":
			return true
		}
	case float64:
		return v == 0 || v == 1
	}
	return false
}

func isValidLogLevelSetting(raw interface{}) bool {
	switch v := raw.(type) {
	case string:
		if _, ok := knownLogLevels[strings.ToUpper(v)]; ok {
			return true
		}
		// Numeric levels are carried as strings by some clients.
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		for _, r := range trimmed {
			if r < '0' && r != '-' || r > '9' {
				return false
			}
		}
		return true
	case float64:
		return true
	}
	return false
}
