package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their
// user-facing messages. Using a slice (not a map) because errors.Is()
// requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrEnvSetup,
		info: ErrorInfo{
			Message: "Could not create the isolated Python environment.",
			Action:  "Check that the configured interpreter is installed and the project directory is writable.",
		},
	},
	{
		err: ErrDependencyInstall,
		info: ErrorInfo{
			Message: "Dependency installation failed; packaging was not attempted.",
			Action:  "Review the pip output above and fix the dependency manifest.",
		},
	},
	{
		err: ErrPackaging,
		info: ErrorInfo{
			Message: "The packaging tool failed to produce the application bundle.",
			Action:  "Review the py2app output above and check the build descriptor.",
		},
	},
	{
		err: ErrBundleNotFound,
		info: ErrorInfo{
			Message: "Packaging finished but no application bundle was found in dist.",
			Action:  "Check that the build descriptor targets py2app and produces a .app bundle.",
		},
	},
	{
		err: ErrRelocation,
		info: ErrorInfo{
			Message: "Could not move artifacts into the destination directory. The built artifacts remain in the local dist directory.",
			Action:  "Check that the destination exists and is writable, then move the artifacts manually or re-run.",
		},
	},
	{
		err: ErrMissingPrerequisite,
		info: ErrorInfo{
			Message: "One or more build prerequisites are missing.",
			Action:  "Run 'pybundle doctor' for details.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "The configuration is invalid.",
			Action:  "Run 'pybundle config show' and fix the offending value.",
		},
	},
}

// getErrorInfo finds the ErrorInfo for an error by traversing its chain.
func getErrorInfo(err error) (ErrorInfo, bool) {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info, true
		}
	}
	return ErrorInfo{}, false
}

// UserMessage returns a user-friendly message for an error, falling back to
// the error's own text for uncategorized errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if info, ok := getErrorInfo(err); ok {
		return info.Message
	}
	return err.Error()
}

// Actionable returns the user-facing message and a suggested action for an
// error. Action is empty when no suggestion applies.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	if info, ok := getErrorInfo(err); ok {
		return info.Message, info.Action
	}
	return err.Error(), ""
}

// IsInvalidInput reports whether an error should map to exit code 2
// (invalid flags or configuration) rather than a pipeline failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidOutputFormat) ||
		errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrConfigNil) ||
		errors.Is(err, ErrEmptyValue)
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers need only this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
