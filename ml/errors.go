package ml

import "fmt"

// ArtifactLoadError means a required fitted artifact is missing or unreadable.
// Configuration-class, fatal, never retried.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("artifact load failed for %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// ArtifactMismatchError means the input shape does not match what a fitted
// transform expects, i.e. the deployed bundle and code disagree. Fatal.
type ArtifactMismatchError struct {
	Stage    string
	Expected int
	Got      int
}

func (e *ArtifactMismatchError) Error() string {
	return fmt.Sprintf("%s expects %d columns, got %d", e.Stage, e.Expected, e.Got)
}
