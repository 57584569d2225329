package transform_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func TestCTEDependencyAnalyzerGraph(t *testing.T) {
	q, err := parser.ParseSelect(`
WITH base AS (SELECT id FROM users),
     filtered AS (SELECT id FROM base WHERE id > 0)
SELECT id FROM filtered`)
	assert.NoError(t, err)

	g := transform.CTEDependencyAnalyzer{}.Analyze(q)
	assert.Equal(t, []string{"base"}, g.DependenciesOf("filtered"))
	assert.Zero(t, len(g.DependenciesOf("base")))
	assert.Equal(t, []string{"filtered"}, g.DependenciesOf(transform.MainQueryNode))
	assert.Equal(t, []string{"base"}, g.IndependentCTEs())
}

func TestCTEGraphTopologicalOrder(t *testing.T) {
	q, err := parser.ParseSelect(`
WITH base AS (SELECT id FROM users),
     filtered AS (SELECT id FROM base WHERE id > 0)
SELECT id FROM filtered`)
	assert.NoError(t, err)

	g := transform.CTEDependencyAnalyzer{}.Analyze(q)
	order, err := g.TopologicalOrder()
	assert.NoError(t, err)
	assert.Equal(t, []string{"base", "filtered", transform.MainQueryNode}, order)
}

func TestCTEDependencyTracerAppearsAndDropped(t *testing.T) {
	q, err := parser.ParseSelect(`
WITH base AS (SELECT id, name FROM users),
     agg AS (SELECT id FROM base)
SELECT id FROM agg`)
	assert.NoError(t, err)

	tr := transform.CTEDependencyTracer{}.Trace(q, "name")
	assert.Equal(t, []string{"base"}, tr.AppearsIn)
	assert.Equal(t, []string{"agg"}, tr.DroppedAfter)
}
