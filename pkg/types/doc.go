// Package types defines the core data types shared across the classifier.
//
// This package contains:
//   - LabelSet: ordered candidate labels parsed from user input
//   - ClassificationRequest: the validated, immutable request
//   - ScoredLabel and ClassificationResult: the canonical ranked output
//   - ProviderID: provenance of a result (primary model, remote model, keyword fallback)
//
// # Validation
//
// Requests are built through NewClassificationRequest, which rejects empty
// text and empty label sets:
//
//	req, err := types.NewClassificationRequest(text, labels, true)
//	if err != nil {
//	    // re-prompt the user
//	}
//
// # JSON Serialization
//
// Result types carry json and yaml struct tags so callers can render them
// directly. The raw provider payload is JSON only.
package types
