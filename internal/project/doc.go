// Package project scans project directories into folder structure trees
// and keeps them current with a filesystem watcher.
package project
