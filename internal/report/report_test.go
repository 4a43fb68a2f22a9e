package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/formats"
)

func testRun() *census.Run {
	run := census.NewRun()
	run.Record("ffb", formats.Meshviewer, []formats.CanonicalNode{
		{ID: "1", Base: "gluon-v2021.1.2"},
		{ID: "2", Base: "gluon-v2023.2.3"},
		{ID: "3", Base: "gluon-v2023.2"},
		{ID: "4", Base: "gluon-unknown"},
		{ID: "5", Base: "OpenWrt"},
	})
	run.Record("ffa", formats.NodesJSONV1, []formats.CanonicalNode{
		{ID: "6", Base: "gluon-0123abcd"},
	})
	return run
}

func TestCommunities(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []CommunityRow{
		{Community: "ffa", Gluon: 1},
		{Community: "ffb", Gluon: 4, Alien: 1, NewestBase: "gluon-v2023.2.3", Releases: 3},
	}, Communities(testRun()))
}

func TestWriteCommunities(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCommunities(&buf, testRun()))

	out := buf.String()
	assert.Contains(t, out, "ffa")
	assert.Contains(t, out, "gluon-v2023.2.3")
	assert.Contains(t, out, "total")
}

func TestWriteFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteFailures(&buf, census.NewRun()))
	assert.Empty(t, buf.String())
}
