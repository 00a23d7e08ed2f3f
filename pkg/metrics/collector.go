package metrics

import (
	"time"

	"github.com/cuemby/bastion/pkg/state"
)

// Collector samples table occupancy into gauges on a fixed interval.
type Collector struct {
	state  *state.State
	stopCh chan struct{}
}

// NewCollector creates a collector over the shared state.
func NewCollector(st *state.State) *Collector {
	return &Collector{
		state:  st,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	set := func(name string, entries, capacity int) {
		TableEntries.WithLabelValues(name).Set(float64(entries))
		TableCapacity.WithLabelValues(name).Set(float64(capacity))
	}

	st := c.state
	set("runtimes", st.Runtimes.Len(), st.Runtimes.Cap())
	set("containers", st.Containers.Len(), st.Containers.Cap())
	set("processes", st.Processes.Len(), st.Processes.Cap())
	set("allowed_paths_mount_restricted", st.AllowedPathsMountRestricted.Len(), st.AllowedPathsMountRestricted.Cap())
	set("allowed_paths_mount_baseline", st.AllowedPathsMountBaseline.Len(), st.AllowedPathsMountBaseline.Cap())
	set("allowed_paths_access_restricted", st.AllowedPathsAccessRestricted.Len(), st.AllowedPathsAccessRestricted.Cap())
	set("allowed_paths_access_baseline", st.AllowedPathsAccessBaseline.Len(), st.AllowedPathsAccessBaseline.Cap())
	set("denied_paths_access_restricted", st.DeniedPathsAccessRestricted.Len(), st.DeniedPathsAccessRestricted.Cap())
	set("denied_paths_access_baseline", st.DeniedPathsAccessBaseline.Len(), st.DeniedPathsAccessBaseline.Cap())

	ContainersRegistered.Set(float64(st.Containers.Len()))
}
