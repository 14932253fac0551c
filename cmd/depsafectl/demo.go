package main

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/kolkov/depsafe/depsafe"
)

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the six canonical dependency-tracking scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		failures := 0
		for _, sc := range demoScenarioList {
			got := sc.Run()
			if reflect.DeepEqual(got, sc.Want) {
				fmt.Printf("PASS  %s\n", sc.Name)
				continue
			}
			failures++
			fmt.Printf("FAIL  %s (want violations %v, got %v)\n", sc.Name, sc.Want, got)
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d demo scenarios failed", failures, len(demoScenarioList))
		}
		return nil
	},
}

// demoScenario is one of the canonical scenarios: a self-contained replay
// against a fresh engine, plus the labels the violation handler is
// expected to report, in order.
type demoScenario struct {
	Name string
	Want []string
	Run  func() []string
}

func newDemoEngine() (*depsafe.Engine, map[depsafe.Handle]string, *[]string) {
	e := depsafe.NewEngine()
	labels := make(map[depsafe.Handle]string)
	violations := new([]string)
	e.SetViolationHandler(func(h depsafe.Handle) {
		*violations = append(*violations, labels[h])
	})
	return e, labels, violations
}

func mint(labels map[depsafe.Handle]string, name string) depsafe.Handle {
	h := depsafe.NewHandle()
	labels[h] = name
	return h
}

var demoScenarioList = []demoScenario{
	{
		Name: "simple destroy",
		Want: []string{"A"},
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			e.AddDependency(a, b)
			e.MarkDestroyed(b)
			e.Validate(a)
			return *got
		},
	},
	{
		Name: "content mutation",
		Want: []string{"A"},
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			e.AddContentDependency(a, b)
			e.MarkModified(b)
			e.Validate(a)
			e.Validate(b)
			return *got
		},
	},
	{
		Name: "copy propagates",
		Want: []string{"C"},
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			c := mint(labels, "C")
			e.AddDependency(a, b)
			e.MarkDestroyed(b)
			e.PropagateInvalid(c, a)
			e.Validate(c)
			return *got
		},
	},
	{
		Name: "reset clears",
		Want: nil,
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			e.AddDependency(a, b)
			e.MarkDestroyed(b)
			e.Reset(a)
			e.Validate(a)
			return *got
		},
	},
	{
		Name: "content subsumes existence",
		Want: []string{"A"},
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			e.AddDependency(a, b)
			e.AddContentDependency(a, b)
			e.MarkModified(b)
			e.Validate(a)
			return *got
		},
	},
	{
		Name: "mark-destroyed cascades through content",
		Want: []string{"C"},
		Run: func() []string {
			e, labels, got := newDemoEngine()
			defer e.Close()
			a := mint(labels, "A")
			b := mint(labels, "B")
			c := mint(labels, "C")
			e.AddContentDependency(a, b)
			e.AddContentDependency(c, a)
			e.MarkDestroyed(b)
			e.Validate(c)
			return *got
		},
	},
}
