//go:build cgo

package main

import (
	"github.com/dusk-indust/typelens/internal/graph"
)

// openGraphDB opens the persistent graph database at path.
func openGraphDB(path string) (graph.Store, error) {
	return graph.NewKuzuFileStore(path)
}
