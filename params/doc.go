// Package params defines the validated parameter records of each heritage
// query and the input sanitizer applied to free text.
//
// Each record has a Validate method that normalizes it in place (defaults,
// vocabulary intersection, sanitizing) or returns a *ValidationError, and a
// Values method that renders the upstream request parameters. Values
// includes defaulted parameters so equal requests fingerprint identically.
package params
