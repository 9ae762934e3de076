package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/topicd/internal/topic"
)

var (
	// ErrNotDirectory indicates the scan root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrScanFailed indicates the directory could not be traversed.
	ErrScanFailed = errors.New("failed to scan directory")
)

// Scan walks root and builds a folder structure tree. Entries whose name
// starts with a dot are skipped, including their subtrees. Directory
// entries sort before file entries, each group alphabetically.
func Scan(root string) (*topic.Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	nodes, err := scanDir(root)
	if err != nil {
		return nil, err
	}
	return &topic.Tree{Roots: nodes}, nil
}

func scanDir(dir string) ([]topic.Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var nodes []topic.Node
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			children, err := scanDir(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, topic.Dir{Name: entry.Name(), Children: children})
		} else {
			nodes = append(nodes, topic.File{Name: entry.Name()})
		}
	}
	return nodes, nil
}

// Name derives a project name from its root path.
func Name(root string) string {
	return filepath.Base(filepath.Clean(root))
}
