package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Runtime contract violations (E2xx)
	"E201": {
		Category: CategoryRuntime,
		Message:  "Scope closed before its children",
		Detail:   "A scope may only be closed once every child scope created under it has been closed. Teardown must run bottom-up.",
	},
	"E202": {
		Category: CategoryRuntime,
		Message:  "Use of a released Dynamic handle",
		Detail:   "The handle was released with Release. Clone a live handle instead of reusing a released one.",
	},
	"E203": {
		Category: CategoryRuntime,
		Message:  "Notification loop bound exceeded",
		Detail:   "Callbacks kept writing to the cell that notified them. A callback that always makes the same change converges; one that never settles does not.",
	},
	"E204": {
		Category: CategoryRuntime,
		Message:  "Scope used after close",
		Detail:   "The scope has already been closed and its arena slot released.",
	},

	// Configuration errors (E12x, E14x)
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},

	// CLI errors (E16x)
	"E160": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
