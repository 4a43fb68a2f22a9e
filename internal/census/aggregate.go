package census

import (
	"github.com/freifunk/gluon-census/internal/formats"
	"github.com/freifunk/gluon-census/internal/versions"
)

// BaseKey is one cell of the version dimension
type BaseKey struct {
	Version string
	Base    string
	VType   versions.VType
}

// DomainKey is one cell of the domain dimension
type DomainKey struct {
	Site   string
	Domain string
}

// Partition counts nodes along the four census dimensions
type Partition struct {
	Bases   map[BaseKey]int
	Models  map[string]int
	Domains map[DomainKey]int
	Sources map[string]int
}

// Totals holds the per-dimension sums of a partition
type Totals struct {
	Bases   int `json:"bases"`
	Models  int `json:"models"`
	Domains int `json:"domains"`
	Sources int `json:"sources"`
}

func newPartition() *Partition {
	return &Partition{
		Bases:   make(map[BaseKey]int),
		Models:  make(map[string]int),
		Domains: make(map[DomainKey]int),
		Sources: make(map[string]int),
	}
}

func (p *Partition) add(class versions.Class, node formats.CanonicalNode, sourceType string) {
	p.Bases[BaseKey{Version: class.Version, Base: class.Base, VType: class.VType}]++
	p.Models[node.Model]++
	p.Domains[DomainKey{Site: node.Site, Domain: node.Domain}]++
	p.Sources[sourceType]++
}

func (p *Partition) merge(other *Partition) {
	for k, v := range other.Bases {
		p.Bases[k] += v
	}
	for k, v := range other.Models {
		p.Models[k] += v
	}
	for k, v := range other.Domains {
		p.Domains[k] += v
	}
	for k, v := range other.Sources {
		p.Sources[k] += v
	}
}

// Totals sums every dimension
func (p *Partition) Totals() Totals {
	var t Totals
	for _, v := range p.Bases {
		t.Bases += v
	}
	for _, v := range p.Models {
		t.Models += v
	}
	for _, v := range p.Domains {
		t.Domains += v
	}
	for _, v := range p.Sources {
		t.Sources += v
	}
	return t
}

func (t Totals) add(o Totals) Totals {
	return Totals{
		Bases:   t.Bases + o.Bases,
		Models:  t.Models + o.Models,
		Domains: t.Domains + o.Domains,
		Sources: t.Sources + o.Sources,
	}
}

// CommunityAggregate holds the gluon and alien partitions of one community
type CommunityAggregate struct {
	Gluon *Partition
	Alien *Partition
}

// NewCommunityAggregate creates an empty aggregate
func NewCommunityAggregate() *CommunityAggregate {
	return &CommunityAggregate{
		Gluon: newPartition(),
		Alien: newPartition(),
	}
}

// Add classifies node and counts it in exactly one partition
func (a *CommunityAggregate) Add(node formats.CanonicalNode, sourceType string) versions.Class {
	class := versions.Classify(node.Base)
	if class.IsGluon() {
		a.Gluon.add(class, node, sourceType)
	} else {
		a.Alien.add(class, node, sourceType)
	}
	return class
}

// Merge adds all counts of other
func (a *CommunityAggregate) Merge(other *CommunityAggregate) {
	a.Gluon.merge(other.Gluon)
	a.Alien.merge(other.Alien)
}

// Nodes returns the number of nodes counted in the gluon and alien partitions
func (a *CommunityAggregate) Nodes() (gluon, alien int) {
	return a.Gluon.Totals().Bases, a.Alien.Totals().Bases
}
