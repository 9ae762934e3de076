// Package command interprets chat input before routing: bypass prefixes,
// file and folder actions, and prompt formatting for file content.
package command
