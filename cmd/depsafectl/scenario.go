package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kolkov/depsafe/depsafe"
)

// Scenario is a sequence of dependency-engine operations loaded from a YAML
// file and replayed against a fresh Engine. It stands in for a real
// collaborator's constructors and destructors calling into the engine:
// instead of a host type registering its own dependencies in code, a
// scenario step names the two object labels directly.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation in a Scenario. A and B are object labels, not
// handles: the runner mints a Handle for each label the first time it sees
// it. OK is only meaningful for the "assert-spatial" op.
type Step struct {
	Op string `yaml:"op"`
	A  string `yaml:"a,omitempty"`
	B  string `yaml:"b,omitempty"`
	OK *bool  `yaml:"ok,omitempty"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return &sc, nil
}

// Outcome is the post-replay state of one labeled object, used for
// printing replay/stats results.
type Outcome struct {
	Label string
	ID    uuid.UUID
	Valid bool
}

// Violation records one call to Validate that reported a problem during a
// replay.
type Violation struct {
	Label string
	ID    uuid.UUID
}

// RunScenario replays every step of sc against a fresh Engine and returns
// the final outcome for every label the scenario ever mentioned, plus the
// ordered list of violations the handler recorded along the way. A failed
// assert-spatial step does not end the replay and is not listed among the
// returned violations.
func RunScenario(sc *Scenario) ([]Outcome, []Violation, error) {
	engine := depsafe.NewEngine()
	defer engine.Close()
	engine.SetSpatialHandler(func() {})

	labels := newLabelSet()
	var violations []Violation
	engine.SetViolationHandler(func(h depsafe.Handle) {
		violations = append(violations, Violation{
			Label: labels.labelFor(h),
			ID:    labels.idFor(h),
		})
	})

	for i, step := range sc.Steps {
		if err := applyStep(engine, labels, step); err != nil {
			return nil, nil, fmt.Errorf("%s: step %d (%s): %w", sc.Name, i, step.Op, err)
		}
	}

	return labels.outcomes(engine), violations, nil
}

func applyStep(engine *depsafe.Engine, labels *labelSet, step Step) error {
	switch step.Op {
	case "add-dependency":
		engine.AddDependency(labels.handleFor(step.A), labels.handleFor(step.B))
	case "add-content-dependency":
		engine.AddContentDependency(labels.handleFor(step.A), labels.handleFor(step.B))
	case "mark-modified":
		engine.MarkModified(labels.handleFor(step.A))
	case "mark-destroyed":
		engine.MarkDestroyed(labels.handleFor(step.A))
	case "reset":
		engine.Reset(labels.handleFor(step.A))
	case "propagate-invalid":
		engine.PropagateInvalid(labels.handleFor(step.A), labels.handleFor(step.B))
	case "propagate-content":
		engine.PropagateContent(labels.handleFor(step.A), labels.handleFor(step.B))
	case "validate":
		engine.Validate(labels.handleFor(step.A))
	case "assert-spatial":
		ok := step.OK != nil && *step.OK
		engine.AssertSpatial(ok)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// labelSet assigns every scenario-file label a Handle (the engine's real
// identity) and a uuid.UUID (a stable, diffable display identity) the
// first time the label is seen.
type labelSet struct {
	handles  map[string]depsafe.Handle
	ids      map[string]uuid.UUID
	byHandle map[depsafe.Handle]string
	order    []string
}

func newLabelSet() *labelSet {
	return &labelSet{
		handles:  make(map[string]depsafe.Handle),
		ids:      make(map[string]uuid.UUID),
		byHandle: make(map[depsafe.Handle]string),
	}
}

func (s *labelSet) handleFor(label string) depsafe.Handle {
	if h, ok := s.handles[label]; ok {
		return h
	}
	h := depsafe.NewHandle()
	s.handles[label] = h
	s.ids[label] = uuid.New()
	s.byHandle[h] = label
	s.order = append(s.order, label)
	return h
}

func (s *labelSet) labelFor(h depsafe.Handle) string {
	if label, ok := s.byHandle[h]; ok {
		return label
	}
	return h.String()
}

func (s *labelSet) idFor(h depsafe.Handle) uuid.UUID {
	if label, ok := s.byHandle[h]; ok {
		return s.ids[label]
	}
	return uuid.Nil
}

func (s *labelSet) outcomes(engine *depsafe.Engine) []Outcome {
	out := make([]Outcome, 0, len(s.order))
	for _, label := range s.order {
		h := s.handles[label]
		out = append(out, Outcome{
			Label: label,
			ID:    s.ids[label],
			Valid: engine.IsValid(h),
		})
	}
	return out
}
