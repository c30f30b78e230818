// Package utils provides panic recovery and a bounded worker pool shared by
// the classification packages.
package utils
