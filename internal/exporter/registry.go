// Package exporter holds the census counter registry and writes it in the
// Prometheus text exposition format.
package exporter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/freifunk/gluon-census/internal/census"
)

// Metric families of the census
const (
	MetricBase        = "gluon_base_total"
	MetricModel       = "gluon_model_total"
	MetricDomain      = "gluon_domain_total"
	MetricSource      = "gluon_source_total"
	MetricAlien       = "gluon_alien_total"
	MetricAlienModel  = "gluon_alien_model_total"
	MetricAlienDomain = "gluon_alien_domain_total"
	MetricAlienSource = "gluon_alien_source_total"
)

// Label names
const (
	LabelCommunity  = "community"
	LabelBase       = "base"
	LabelVersion    = "version"
	LabelVType      = "vtype"
	LabelModel      = "model"
	LabelSite       = "site"
	LabelDomain     = "domain"
	LabelSourceType = "source_type"
)

// ErrUnknownMetric is returned when incrementing a family that is not registered
var ErrUnknownMetric = errors.New("unknown metric")

type family struct {
	name   string
	help   string
	labels []string
}

var families = []family{
	{MetricBase, "Number of unique nodes running on a certain Gluon base version",
		[]string{LabelCommunity, LabelBase, LabelVersion, LabelVType}},
	{MetricModel, "Number of unique nodes using a certain device model",
		[]string{LabelCommunity, LabelModel}},
	{MetricDomain, "Number of unique nodes on a specific Gluon domain",
		[]string{LabelCommunity, LabelSite, LabelDomain}},
	{MetricSource, "Number of unique nodes from a specific source type",
		[]string{LabelCommunity, LabelSourceType}},
	{MetricAlien, "Number of unique nodes running on a non-Gluon version",
		[]string{LabelCommunity, LabelVersion, LabelVType}},
	{MetricAlienModel, "Number of unique non-Gluon nodes using a certain device model",
		[]string{LabelCommunity, LabelModel}},
	{MetricAlienDomain, "Number of unique non-Gluon nodes on a specific Gluon domain",
		[]string{LabelCommunity, LabelSite, LabelDomain}},
	{MetricAlienSource, "Number of unique non-Gluon nodes from a specific source type",
		[]string{LabelCommunity, LabelSourceType}},
}

// Registry is the counter registry of one census run
type Registry struct {
	registry *prometheus.Registry
	gauges   map[string]*prometheus.GaugeVec
}

// NewRegistry creates a registry with every census family registered and empty
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]*prometheus.GaugeVec, len(families)),
	}
	for _, f := range families {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: f.name, Help: f.help}, f.labels)
		r.registry.MustRegister(g)
		r.gauges[f.name] = g
	}
	return r
}

// Gatherer exposes the registry for HTTP scraping
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Increment adds amount to the cell of metric selected by labels
func (r *Registry) Increment(metric string, labels prometheus.Labels, amount float64) error {
	g, ok := r.gauges[metric]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	clean := make(prometheus.Labels, len(labels))
	for name, value := range labels {
		clean[name] = strings.ToValidUTF8(value, "\uFFFD")
	}
	cell, err := g.GetMetricWith(clean)
	if err != nil {
		return fmt.Errorf("invalid labels for %s: %w", metric, err)
	}
	cell.Add(amount)
	return nil
}

// Flush applies one increment per community, dimension and cell of run
func (r *Registry) Flush(run *census.Run) error {
	for _, community := range run.Communities() {
		agg, ok := run.Aggregate(community)
		if !ok {
			continue
		}
		if err := r.flushPartition(community, agg.Gluon, false); err != nil {
			return err
		}
		if err := r.flushPartition(community, agg.Alien, true); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) flushPartition(community string, p *census.Partition, alien bool) error {
	base, model, domain, source := MetricBase, MetricModel, MetricDomain, MetricSource
	if alien {
		base, model, domain, source = MetricAlien, MetricAlienModel, MetricAlienDomain, MetricAlienSource
	}

	for k, n := range p.Bases {
		labels := prometheus.Labels{
			LabelCommunity: community,
			LabelVersion:   k.Version,
			LabelVType:     string(k.VType),
		}
		if !alien {
			labels[LabelBase] = k.Base
		}
		if err := r.Increment(base, labels, float64(n)); err != nil {
			return err
		}
	}
	for m, n := range p.Models {
		if err := r.Increment(model, prometheus.Labels{LabelCommunity: community, LabelModel: m}, float64(n)); err != nil {
			return err
		}
	}
	for k, n := range p.Domains {
		labels := prometheus.Labels{LabelCommunity: community, LabelSite: k.Site, LabelDomain: k.Domain}
		if err := r.Increment(domain, labels, float64(n)); err != nil {
			return err
		}
	}
	for s, n := range p.Sources {
		if err := r.Increment(source, prometheus.Labels{LabelCommunity: community, LabelSourceType: s}, float64(n)); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the current value of one cell, zero if it was never set
func (r *Registry) Value(metric string, labels prometheus.Labels) (float64, error) {
	mfs, err := r.registry.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range mfs {
		if mf.GetName() != metric {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetGauge().GetValue(), nil
			}
		}
	}
	return 0, nil
}

// Names returns the census family names, sorted
func Names() []string {
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.name
	}
	slices.Sort(names)
	return names
}

func familyHeader(name string) string {
	for _, f := range families {
		if f.name == name {
			return "# HELP " + f.name + " " + f.help + "\n# TYPE " + f.name + " gauge\n"
		}
	}
	return ""
}

func labelsMatch(pairs []*dto.LabelPair, want prometheus.Labels) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}
