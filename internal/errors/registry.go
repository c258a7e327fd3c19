package errors

import "sort"

// Error codes.
const (
	CodeMalformedNode = "F001"
	CodeUnknownTag    = "F002"
	CodeHostFailure   = "F003"
	CodeReentrant     = "F004"
	CodeInvalidConfig = "F010"
	CodeTreeFile      = "F011"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render phase (F001-F009)
	// ============================================

	CodeMalformedNode: {
		Category: CategoryValidation,
		Message:  "Malformed virtual node",
		Detail:   "A virtual node is missing a required field or carries fields that do not belong to its kind. Elements need a tag; text nodes cannot have children.",
	},
	CodeUnknownTag: {
		Category: CategoryRuntime,
		Message:  "Unknown render node tag",
		Detail:   "Begin or complete work met a render node whose tag is not Root, Host or Text. The builder and the reconciler disagree about node kinds.",
	},
	CodeHostFailure: {
		Category: CategoryHost,
		Message:  "Host adapter rejected a mutation",
		Detail:   "The host tree adapter returned an error. Mutations already applied in this commit are not rolled back.",
	},
	CodeReentrant: {
		Category: CategoryRuntime,
		Message:  "Work loop invoked re-entrantly",
		Detail:   "The scheduler was asked to run work from inside a host adapter callback. Work loops must not nest.",
	},

	// ============================================
	// Tooling (F010-F019)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file failed validation.",
	},
	CodeTreeFile: {
		Category: CategoryInput,
		Message:  "Invalid tree file",
		Detail:   "The tree description could not be parsed into virtual nodes.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
