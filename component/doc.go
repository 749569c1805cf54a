// Package component defines the lifecycle interface implemented by
// clientkit infrastructure such as the named transport factory.
package component
