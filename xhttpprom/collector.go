// Package xhttpprom exposes an xhttp.Server's Stats snapshot as
// Prometheus metrics, for embedders that want introspection without the
// server itself taking on a metrics dependency in its hot path. Metric
// naming follows the namespace/subsystem/name convention the rest of the
// corpus uses for its own buffer-pool metrics.
package xhttpprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/xhttp"
)

// Collector adapts one server's Stats() into the prometheus.Collector
// interface. Register it with a prometheus.Registerer; Collect is called
// synchronously on every scrape and simply reads the snapshot, so it
// adds no overhead to the event loop itself.
type Collector struct {
	srv *xhttp.Server

	liveConnections  *prometheus.Desc
	poolCapacity     *prometheus.Desc
	requestsServed   *prometheus.Desc
	keepAliveCloses  *prometheus.Desc
	forcedCloses     *prometheus.Desc
	backPressureHits *prometheus.Desc
}

// NewCollector builds a Collector for srv. Call prometheus.Registerer's
// Register (or MustRegister) with the result to start scraping it.
func NewCollector(srv *xhttp.Server) *Collector {
	ns, sub := "xhttp", "server"
	return &Collector{
		srv: srv,
		liveConnections: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "live_connections"),
			"Number of connections currently held by the pool.", nil, nil),
		poolCapacity: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "pool_capacity"),
			"Fixed capacity of the connection pool.", nil, nil),
		requestsServed: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "requests_served_total"),
			"Total requests that reached the application callback.", nil, nil),
		keepAliveCloses: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "keep_alive_closes_total"),
			"Connections closed after a normally assembled response (keep-alive not requested, request cap, back-pressure, or an explicit Close).", nil, nil),
		forcedCloses: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "forced_closes_total"),
			"Connections closed due to a parse or allocation failure.", nil, nil),
		backPressureHits: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "back_pressure_hits_total"),
			"Times the pool's live-connection fraction forced a response to carry Connection: close.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.liveConnections
	ch <- c.poolCapacity
	ch <- c.requestsServed
	ch <- c.keepAliveCloses
	ch <- c.forcedCloses
	ch <- c.backPressureHits
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.srv.Stats()
	ch <- prometheus.MustNewConstMetric(c.liveConnections, prometheus.GaugeValue, float64(s.LiveConnections))
	ch <- prometheus.MustNewConstMetric(c.poolCapacity, prometheus.GaugeValue, float64(s.PoolCapacity))
	ch <- prometheus.MustNewConstMetric(c.requestsServed, prometheus.CounterValue, float64(s.RequestsServed))
	ch <- prometheus.MustNewConstMetric(c.keepAliveCloses, prometheus.CounterValue, float64(s.KeepAliveCloses))
	ch <- prometheus.MustNewConstMetric(c.forcedCloses, prometheus.CounterValue, float64(s.ForcedCloses))
	ch <- prometheus.MustNewConstMetric(c.backPressureHits, prometheus.CounterValue, float64(s.BackPressureHits))
}
