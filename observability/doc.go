// Package observability exports assetstream metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc := observability.NewCollector(reg, "game")
//	mgr, _ := assetstream.New(assetstream.WithMetricsCollector(mc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package observability
