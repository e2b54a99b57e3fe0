package errors

import "sort"

// Registered error codes.
const (
	CodeUnregisteredType = "E101"
	CodeNetworkFailure   = "E102"
	CodeRecordNotFound   = "E103"
	CodeInvalidArgument  = "E104"
	CodeConfig           = "E201"
	CodeConfigNotFound   = "E202"
)

// Template defines a registered error type.
type Template struct {
	Kind    Kind
	Message string
	Detail  string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Store Errors (E100-E199)
	// ============================================

	CodeUnregisteredType: {
		Kind:    KindUnregisteredType,
		Message: "Model type not registered",
		Detail:  "Register the model with Store.Register or store.Config.Models before fetching, reading or updating its records.",
	},
	CodeNetworkFailure: {
		Kind:    KindNetworkFailure,
		Message: "Network request failed",
		Detail:  "The server could not be reached or answered with a non-success status after all retries.",
	},
	CodeRecordNotFound: {
		Kind:    KindRecordNotFound,
		Message: "Record not found",
		Detail:  "No record exists for the requested id.",
	},
	CodeInvalidArgument: {
		Kind:    KindInvalidArgument,
		Message: "Invalid argument",
		Detail:  "A required value was empty or malformed.",
	},

	// ============================================
	// Config Errors (E200-E299)
	// ============================================

	CodeConfig: {
		Kind:    KindConfig,
		Message: "Invalid configuration",
		Detail:  "The configuration file could not be parsed or failed validation.",
	},
	CodeConfigNotFound: {
		Kind:    KindConfig,
		Message: "Configuration file not found",
		Detail:  "No appstore.json or appstore.yaml was found.",
	},
}

// Codes returns all registered error codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
