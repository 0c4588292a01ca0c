// Package metrics exposes a prometheus.Collector over the bridge's running
// state: per-node message throughput, per-protocol online state, and
// handler cache sizes (spec.md §6.9 "expose Prometheus metrics").
package metrics

import (
	"fmt"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/prometheus/client_golang/prometheus"
)

// NodeStats is the narrow read surface a bridgenode.Node exposes for
// telemetry. *bridgenode.Node satisfies this directly; neither package
// imports the other.
type NodeStats interface {
	ID() objectmodel.NodeID
	MessagesBridged() uint64
	ProtocolStates() map[objectmodel.ProtocolID]handler.OnlineState
	ProtocolTypes() map[objectmodel.ProtocolID]processor.Type
	CacheSizes() (remap, a, b int)
}

// NodesFunc returns a live snapshot of every node under management at
// scrape time.
type NodesFunc func() []NodeStats

// Collector is a prometheus.Collector that gathers bridge metrics at
// scrape time, the way the teacher's Collector queries its providers
// on-demand rather than caching.
type Collector struct {
	nodes     NodesFunc
	startTime time.Time

	messagesDesc  *prometheus.Desc
	onlineDesc    *prometheus.Desc
	cacheSizeDesc *prometheus.Desc
	uptimeDesc    *prometheus.Desc
}

// NewCollector creates a new metrics collector. nodes is called once per
// scrape.
func NewCollector(nodes NodesFunc, startTime time.Time) *Collector {
	return &Collector{
		nodes:     nodes,
		startTime: startTime,

		messagesDesc: prometheus.NewDesc(
			"remoteprotocolbridge_node_messages_bridged_total",
			"Total number of messages a node has accepted from its processors",
			[]string{"node_id"}, nil,
		),
		onlineDesc: prometheus.NewDesc(
			"remoteprotocolbridge_protocol_online",
			"Protocol online state as tracked by its node's handler (1=up, 0=down)",
			[]string{"node_id", "protocol_id", "protocol_type"}, nil,
		),
		cacheSizeDesc: prometheus.NewDesc(
			"remoteprotocolbridge_handler_cache_entries",
			"Live entry count of a node handler's internal caches",
			[]string{"node_id", "cache"}, nil,
		),
		uptimeDesc: prometheus.NewDesc(
			"remoteprotocolbridge_uptime_seconds",
			"Seconds since the bridge process started",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messagesDesc
	ch <- c.onlineDesc
	ch <- c.cacheSizeDesc
	ch <- c.uptimeDesc
}

// Collect implements prometheus.Collector. It queries every node at scrape
// time; nodes added or removed between scrapes simply appear or vanish.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, n := range c.nodes() {
		nodeID := fmt.Sprintf("%d", n.ID())

		ch <- prometheus.MustNewConstMetric(
			c.messagesDesc, prometheus.CounterValue,
			float64(n.MessagesBridged()), nodeID,
		)

		types := n.ProtocolTypes()
		for id, state := range n.ProtocolStates() {
			val := 0.0
			if state.IsUp() {
				val = 1.0
			}
			ch <- prometheus.MustNewConstMetric(
				c.onlineDesc, prometheus.GaugeValue, val,
				nodeID, fmt.Sprintf("%d", id), types[id].String(),
			)
		}

		remap, a, b := n.CacheSizes()
		ch <- prometheus.MustNewConstMetric(c.cacheSizeDesc, prometheus.GaugeValue, float64(remap), nodeID, "remap")
		ch <- prometheus.MustNewConstMetric(c.cacheSizeDesc, prometheus.GaugeValue, float64(a), nodeID, "a")
		ch <- prometheus.MustNewConstMetric(c.cacheSizeDesc, prometheus.GaugeValue, float64(b), nodeID, "b")
	}

	ch <- prometheus.MustNewConstMetric(
		c.uptimeDesc, prometheus.GaugeValue,
		time.Since(c.startTime).Seconds(),
	)
}
