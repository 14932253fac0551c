package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kolkov/depsafe/depsafe"
)

var statsPrometheus bool
var statsAddr string

func init() {
	statsCmd.Flags().BoolVar(&statsPrometheus, "prometheus", false, "serve a /metrics endpoint after printing the stats")
	statsCmd.Flags().StringVar(&statsAddr, "addr", ":9102", "address to serve /metrics on, with --prometheus")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Seed an engine with sample dependencies and print its stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := depsafe.NewEngine()
		defer engine.Close()

		seedStats(engine)

		s := engine.Stats()
		fmt.Printf("objects:          %d\n", s.Objects)
		fmt.Printf("edges:            %d\n", s.Edges)
		fmt.Printf("violations:       %d\n", s.Violations)
		fmt.Printf("spatial failures: %d\n", s.SpatialFailures)

		if !statsPrometheus {
			return nil
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(depsafe.NewCollector(engine))
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		fmt.Printf("serving /metrics on %s\n", statsAddr)
		return http.ListenAndServe(statsAddr, nil)
	},
}

// seedStats registers one dependency pair per canonical demo scenario
// against e, so "stats" has something nonzero to report instead of an
// empty engine.
func seedStats(e *depsafe.Engine) {
	for range demoScenarioList {
		a, b := depsafe.NewHandle(), depsafe.NewHandle()
		e.AddDependency(a, b)
		e.MarkDestroyed(b)
	}
}
