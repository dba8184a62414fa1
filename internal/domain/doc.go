// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (manifest, requirement, release, report) and
// contracts (interfaces) only.
package domain
