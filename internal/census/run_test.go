package census

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freifunk/gluon-census/internal/formats"
)

func TestRun_Record(t *testing.T) {
	t.Parallel()

	run := NewRun()

	rec := run.Record("ffa", formats.Meshviewer, []formats.CanonicalNode{
		{ID: "1", Base: "gluon-v2022.1"},
		{ID: "2", Base: ""},
		{ID: "1", Base: "gluon-v2022.1"},
	})
	assert.Equal(t, Recorded{Gluon: 1, Alien: 1, Duplicates: 1}, rec)

	// a second URL of the same community repeating node 2
	rec = run.Record("ffa", formats.NodesJSONV2, []formats.CanonicalNode{
		{ID: "2", Base: ""},
		{ID: "3", Base: "gluon-v2023.1"},
	})
	assert.Equal(t, Recorded{Gluon: 1, Duplicates: 1}, rec)

	// another community reporting a node already counted
	rec = run.Record("ffb", formats.Meshviewer, []formats.CanonicalNode{{ID: "3"}})
	assert.Equal(t, Recorded{Duplicates: 1}, rec)

	assert.Equal(t, 3, run.Unique())
	assert.Equal(t, 3, run.Duplicates())
	assert.Equal(t, []string{"ffa"}, run.Communities(), "aggregates are created on the first counted node")

	agg, ok := run.Aggregate("ffa")
	require.True(t, ok)
	gluon, alien := agg.Nodes()
	assert.Equal(t, 2, gluon)
	assert.Equal(t, 1, alien)
}

func TestRun_SummaryConsistent(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.Record("ffa", formats.Meshviewer, []formats.CanonicalNode{
		{ID: "1", Base: "gluon-v2022.1", Model: "a"},
		{ID: "2", Base: "custom-build", Model: "b"},
	})
	run.Record("ffb", formats.NodesJSONV1, []formats.CanonicalNode{
		{ID: "3", Base: "gluon-0123abcd"},
		{ID: "1"},
	})
	run.addResult(SourceResult{Community: "ffa", URL: "u1", Format: formats.Meshviewer, Nodes: 2, Skipped: 1})
	run.addResult(SourceResult{Community: "ffb", URL: "u2", Err: errors.New("boom")})
	run.finish()

	s := run.Summary()
	assert.Equal(t, run.ID.String(), s.RunID)
	assert.Equal(t, 3, s.Unique)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, Totals{Bases: 2, Models: 2, Domains: 2, Sources: 2}, s.Gluon)
	assert.Equal(t, Totals{Bases: 1, Models: 1, Domains: 1, Sources: 1}, s.Alien)
	assert.Empty(t, s.Mismatches)
	assert.False(t, s.FinishedAt.IsZero())
}

func TestRun_SummaryMismatch(t *testing.T) {
	t.Parallel()

	run := NewRun()
	run.Record("ffa", formats.Meshviewer, []formats.CanonicalNode{{ID: "1", Base: "gluon-v2022.1", Model: "a"}})

	agg, _ := run.Aggregate("ffa")
	agg.Gluon.Models["b"]++
	delete(agg.Gluon.Sources, formats.Meshviewer)

	s := run.Summary()
	require.Len(t, s.Mismatches, 2)
	assert.Equal(t, Mismatch{Dimension: DimensionModels, Unique: 1, Gluon: 2}, s.Mismatches[0])
	assert.Equal(t, "Model count mismatch", s.Mismatches[0].Message())
	assert.Equal(t, Mismatch{Dimension: DimensionSources, Unique: 1}, s.Mismatches[1])
	assert.Equal(t, "Source type count mismatch", s.Mismatches[1].Message())

	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})
	s.Log(log)

	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"msg"="Collections summaries"`)
	assert.Contains(t, lines[1], `"msg"="Collections summaries, alien"`)
	assert.Contains(t, lines[2], `"unique"=1`)
	assert.Contains(t, lines[3], `"msg"="Model count mismatch"`)
	assert.Contains(t, lines[4], `"msg"="Source type count mismatch"`)
}

func TestMismatch_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Node count mismatch", Mismatch{Dimension: DimensionNodes}.Message())
	assert.Equal(t, "Domain count mismatch", Mismatch{Dimension: DimensionDomains}.Message())
}

func TestSourceResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(SourceResult{
		Community: "ffa",
		URL:       "https://map.ffa.example/nodes.json",
		Duration:  1500 * time.Millisecond,
		Err:       errors.New("HTTP 404"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"community": "ffa",
		"url": "https://map.ffa.example/nodes.json",
		"nodes": 0,
		"duplicates": 0,
		"skipped": 0,
		"durationSeconds": 1.5,
		"error": "HTTP 404"
	}`, string(data))
}
