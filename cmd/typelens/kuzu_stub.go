//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/typelens/internal/graph"
)

// openGraphDB requires cgo for the embedded graph database.
func openGraphDB(string) (graph.Store, error) {
	return nil, fmt.Errorf("graph persistence requires a cgo build")
}
