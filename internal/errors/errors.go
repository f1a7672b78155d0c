// Package errors provides centralized error handling for pybundle.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEnvSetup indicates that the isolated virtualenv could not be
	// created (missing interpreter, disk full, unwritable project dir).
	ErrEnvSetup = errors.New("environment setup failed")

	// ErrDependencyInstall indicates that installing the pinned dependency
	// manifest into the virtualenv failed. This is fatal: packaging must not
	// run against a partially populated environment.
	ErrDependencyInstall = errors.New("dependency install failed")

	// ErrPackaging indicates that the packaging tool exited non-zero or did
	// not produce the expected application bundle.
	ErrPackaging = errors.New("packaging failed")

	// ErrRelocation indicates that the destination directory is inaccessible
	// or unwritable. The built artifacts remain in the local dist directory.
	ErrRelocation = errors.New("relocation failed")

	// ErrCommandFailed indicates that an external command exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrBundleNotFound indicates that no application bundle was found in
	// the dist directory after packaging.
	ErrBundleNotFound = errors.New("application bundle not found")

	// ErrAmbiguousBundle indicates that more than one application bundle was
	// found in the dist directory, so the canonical artifact is undecidable.
	ErrAmbiguousBundle = errors.New("multiple application bundles found")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrMissingPrerequisite indicates that a preflight check failed
	// (interpreter not on PATH, setup script or manifest missing).
	ErrMissingPrerequisite = errors.New("missing prerequisite")
)
