// Package promcollector exports batbit container metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := promcollector.New(reg, "batbit")
//	cave, _ := batbit.NewBatCave(batbit.WithMetricsCollector(mc))
//
// Every series is labeled with the container component (cave, vector, map,
// store).
package promcollector
