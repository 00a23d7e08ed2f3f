/*
Package metrics provides Prometheus metrics collection and exposition for
Bastion.

The metrics package defines and registers all Bastion metrics using the
Prometheus client library, providing observability into decision volume,
lineage tracking, table occupancy, and control API traffic. Metrics are
exposed via an HTTP endpoint for scraping.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                             │          │
	│  │  Decisions: per hook and verdict            │          │
	│  │  Anomalies: tolerated oddities per hook     │          │
	│  │  Lineage: events per source and outcome     │          │
	│  │  Tables: occupancy and capacity gauges      │          │
	│  │  Control API: request count, duration       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘          │
	└───────────────────────────────────────────────────────────┘

# Core Components

Counters are incremented inline on the decision path (a label lookup and
an atomic add, cheap enough for the hot path). Gauges are sampled by the
Collector every 15 seconds rather than updated inline, so table reads
never contend with event handling.

# Key Metrics for Operators

	bastion_decisions_total{hook="mount",verdict="deny"}
	    Denial volume per hook; a sudden rise usually means a workload
	    started probing outside its allowlist.

	bastion_table_entries{table="processes"} vs
	bastion_table_capacity{table="processes"}
	    Headroom before registrations start falling through as host
	    operations.

	bastion_lineage_events_total{source,outcome}
	    Delivery balance between the two lineage sources; one source
	    going silent is a wiring problem, not a policy one.

# Usage Example

	collector := metrics.NewCollector(st)
	collector.Start()
	defer collector.Stop()

	mux.Handle("/metrics", metrics.Handler())
*/
package metrics
