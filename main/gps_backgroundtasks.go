/*
	Copyright (c) 2015-2016 Christopher Young
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	gps_backgroundtasks.go: HTTP endpoint for metrics and health.
*/

package main

import (
	"log"
	"net/http"

	"github.com/b3nn0/gpsmon/gps"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func metricsHandler(w *gps.Worker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		state := w.State()
		if state == gps.StateFaulted {
			rw.WriteHeader(http.StatusServiceUnavailable)
		} else {
			rw.WriteHeader(http.StatusOK)
		}
		_, _ = rw.Write([]byte(string(state) + "\n"))
	})
	return mux
}

// startMetricsServer serves /metrics and /healthz on addr until the process exits.
func startMetricsServer(addr string, w *gps.Worker) *http.Server {
	srv := &http.Server{Addr: addr, Handler: metricsHandler(w)}
	go func() {
		log.Printf("metrics listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server: %s\n", err)
		}
	}()
	return srv
}
