// Package report renders human-readable census summaries.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/versions"
)

// CommunityRow is one line of the community table
type CommunityRow struct {
	Community  string
	Gluon      int
	Alien      int
	NewestBase string
	Releases   int
}

// Communities builds one row per community of run, sorted by name
func Communities(run *census.Run) []CommunityRow {
	var rows []CommunityRow
	for _, name := range run.Communities() {
		agg, _ := run.Aggregate(name)
		gluon, alien := agg.Nodes()
		row := CommunityRow{Community: name, Gluon: gluon, Alien: alien}

		releases := map[string]struct{}{}
		for k := range agg.Gluon.Bases {
			if k.VType != versions.VTypeGluonBase {
				continue
			}
			releases[k.Base] = struct{}{}
			if row.NewestBase == "" || versions.IsNewerBase(k.Base, row.NewestBase) {
				row.NewestBase = k.Base
			}
		}
		row.Releases = len(releases)
		rows = append(rows, row)
	}
	return rows
}

// WriteCommunities renders the community table followed by a total line
func WriteCommunities(w io.Writer, run *census.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header("Community", "Gluon", "Alien", "Releases", "Newest base")

	var data [][]string
	var gluon, alien int
	for _, row := range Communities(run) {
		gluon += row.Gluon
		alien += row.Alien
		newest := row.NewestBase
		if newest == "" {
			newest = "-"
		}
		data = append(data, []string{
			row.Community,
			strconv.Itoa(row.Gluon),
			strconv.Itoa(row.Alien),
			strconv.Itoa(row.Releases),
			newest,
		})
	}
	data = append(data, []string{"total", strconv.Itoa(gluon), strconv.Itoa(alien), "", ""})

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to build community table: %w", err)
	}
	return table.Render()
}

// WriteFailures renders every failed source of run. Nothing is written when
// all sources succeeded.
func WriteFailures(w io.Writer, run *census.Run) error {
	var data [][]string
	for _, res := range run.Results() {
		if res.OK() {
			continue
		}
		data = append(data, []string{res.Community, res.URL, res.Err.Error()})
	}
	if len(data) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Community", "URL", "Error")
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to build failure table: %w", err)
	}
	return table.Render()
}
