package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/diag"
	"github.com/dusk-indust/typelens/internal/graph"
)

func pyUnit(path, src string) Unit {
	return Unit{Path: path, Source: []byte(src), Language: graph.LangPython}
}

func TestScanner_Batch(t *testing.T) {
	units := []Unit{
		pyUnit("ids.py", `from typing import NewType

UserId = NewType('UserId', str)

def create_user_id(value: str) -> UserId:
    return UserId(value)
`),
		pyUnit("models.py", `from pydantic import BaseModel

class User(BaseModel):
    id: UserId
`),
	}

	res, err := NewScanner(4).Run(context.Background(), units)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Diagnostics)

	names := make(map[string]classify.Tier)
	for _, d := range res.Declarations {
		names[d.Name] = d.Tier
	}
	assert.Equal(t, classify.Tier2, names["UserId"])
	assert.Equal(t, classify.Tier3, names["User"])

	assert.NotNil(t, res.Graph.FindNode("User"))
	assert.NotNil(t, res.Graph.FindNode("UserId"))
}

func TestScanner_DeterministicMerge(t *testing.T) {
	units := []Unit{
		pyUnit("a.py", "type Alpha = int\n"),
		pyUnit("b.py", "type Beta = int\n"),
		pyUnit("c.py", "type Gamma = int\n"),
	}

	first, err := NewScanner(3).Run(context.Background(), units)
	require.NoError(t, err)
	second, err := NewScanner(3).Run(context.Background(), units)
	require.NoError(t, err)

	// Results follow input order regardless of worker scheduling.
	require.Len(t, first.Declarations, 3)
	assert.Equal(t, "Alpha", first.Declarations[0].Name)
	assert.Equal(t, "Beta", first.Declarations[1].Name)
	assert.Equal(t, "Gamma", first.Declarations[2].Name)
	assert.Equal(t, first.Declarations, second.Declarations)
}

func TestScanner_BrokenUnitIsolated(t *testing.T) {
	units := []Unit{
		pyUnit("broken.py", "class Broken(:\n    pass\n"),
		pyUnit("ok.py", "StatusCode = NewType('StatusCode', int)\n"),
	}

	res, err := NewScanner(2).Run(context.Background(), units)
	require.NoError(t, err)

	var sawParse bool
	for _, d := range res.Diagnostics {
		if d.File == "broken.py" && d.Reason == diag.ReasonSyntaxParse {
			sawParse = true
		}
	}
	assert.True(t, sawParse, "broken unit should surface a parse diagnostic")

	require.Len(t, res.Declarations, 1)
	assert.Equal(t, "StatusCode", res.Declarations[0].Name)
}

func TestScanner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	units := []Unit{
		pyUnit("a.py", "type Alpha = int\n"),
		pyUnit("b.py", "type Beta = int\n"),
	}

	res, err := NewScanner(1).Run(ctx, units)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "partial result is returned on cancellation")

	notCompleted := 0
	for _, d := range res.Diagnostics {
		if d.Reason == diag.ReasonUnitNotCompleted {
			notCompleted++
		}
	}
	assert.Equal(t, len(units), notCompleted)
	assert.Empty(t, res.Declarations)
}

func TestLoadUnits(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("models.py", "type A = int\n")
	write("pkg/main.go", "package main\n")
	write("notes.md", "not source\n")
	write("vendor/skip.py", "type B = int\n")

	units, err := LoadUnits(dir, []string{"vendor"})
	require.NoError(t, err)
	require.Len(t, units, 2)

	paths := []string{units[0].Path, units[1].Path}
	assert.Contains(t, paths, "models.py")
	assert.Contains(t, paths, filepath.Join("pkg", "main.go"))
}
