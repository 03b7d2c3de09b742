// Package scenario loads a pipeline-plus-event-stream recipe from YAML, the
// same role geofffranks/simpleyaml plays for graft's merge inputs
// (cmd/graft/main.go's parseYAML): read the whole document into a plain
// map[interface{}]interface{} tree up front, then walk it by hand rather
// than unmarshaling into typed structs, since the pipeline section is a
// small ad hoc DSL rather than a fixed schema.
package scenario

import (
	"fmt"

	"github.com/geofffranks/simpleyaml"

	"github.com/viewstream/viewstream/pkg/pipeline"
)

// Step is one configured pipeline stage, as read from the scenario's
// "pipeline" list.
type Step struct {
	Kind         string // defineProperty, dropProperty, filter, groupBy, dropArray, sum, count, min, max, average, pickByMin, pickByMax
	Scope        []string
	ArrayName    string
	PropertyName string
	OutputName   string
	GroupNames   []string
	Expression   string // for defineProperty/filter, evaluated with pkg/pipeline.Expr(Predicate)
}

// Event is one configured add/remove, as read from the scenario's
// "events" list.
type Event struct {
	Kind  string // add, remove
	Key   string
	Props pipeline.Item
}

// Scenario is a fully parsed recipe: build Pipeline against a
// pipeline.InputStep with pipeline.Builder, then replay Events into it.
type Scenario struct {
	Pipeline []Step
	Events   []Event
}

// Load parses a scenario document from raw YAML bytes.
func Load(data []byte) (*Scenario, error) {
	y, err := simpleyaml.NewYaml(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	rawSteps, err := y.Get("pipeline").Array()
	if err != nil {
		return nil, fmt.Errorf("scenario.pipeline must be a list: %w", err)
	}
	steps := make([]Step, 0, len(rawSteps))
	for i := range rawSteps {
		s, err := parseStep(y.Get("pipeline").GetIndex(i))
		if err != nil {
			return nil, fmt.Errorf("pipeline[%d]: %w", i, err)
		}
		steps = append(steps, s)
	}

	rawEvents, err := y.Get("events").Array()
	if err != nil {
		return nil, fmt.Errorf("scenario.events must be a list: %w", err)
	}
	events := make([]Event, 0, len(rawEvents))
	for i := range rawEvents {
		e, err := parseEvent(y.Get("events").GetIndex(i))
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, e)
	}

	return &Scenario{Pipeline: steps, Events: events}, nil
}

func parseStep(y *simpleyaml.Yaml) (Step, error) {
	for _, kind := range []string{
		"defineProperty", "dropProperty", "filter", "groupBy", "dropArray",
		"sum", "count", "min", "max", "average", "pickByMin", "pickByMax",
	} {
		if node := y.Get(kind); !node.IsNil() {
			scope, _ := stringList(y.Get("in"))
			array, _ := node.Get("array").String()
			property, _ := node.Get("property").String()
			output, _ := node.Get("output").String()
			expr, _ := node.Get("expr").String()
			groupNames, _ := stringList(node.Get("by"))
			return Step{
				Kind:         kind,
				Scope:        scope,
				ArrayName:    array,
				PropertyName: property,
				OutputName:   output,
				GroupNames:   groupNames,
				Expression:   expr,
			}, nil
		}
	}
	return Step{}, fmt.Errorf("unrecognized pipeline step")
}

func parseEvent(y *simpleyaml.Yaml) (Event, error) {
	if add := y.Get("add"); !add.IsNil() {
		key, err := add.Get("key").String()
		if err != nil {
			return Event{}, fmt.Errorf("add.key: %w", err)
		}
		rawProps, err := add.Get("props").Map()
		if err != nil {
			return Event{}, fmt.Errorf("add.props: %w", err)
		}
		props := pipeline.Item{}
		for k, v := range rawProps {
			props[fmt.Sprintf("%v", k)] = v
		}
		return Event{Kind: "add", Key: key, Props: props}, nil
	}
	if remove := y.Get("remove"); !remove.IsNil() {
		key, err := remove.Get("key").String()
		if err != nil {
			return Event{}, fmt.Errorf("remove.key: %w", err)
		}
		return Event{Kind: "remove", Key: key}, nil
	}
	return Event{}, fmt.Errorf("event must have an 'add' or 'remove' key")
}

func stringList(y *simpleyaml.Yaml) ([]string, error) {
	if y.IsNil() {
		return nil, nil
	}
	raw, err := y.Array()
	if err != nil {
		// allow a bare scalar as a one-element scope/by list
		s, serr := y.String()
		if serr != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	out := make([]string, 0, len(raw))
	for i := range raw {
		s, err := y.GetIndex(i).String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Build composes the scenario's pipeline steps on top of in, using the
// fluent Builder the same way a hand-written program would, then wires
// sink to the resulting materialized view and returns the source (in,
// widened to pipeline.Step) the caller drives with Add/Remove.
func Build(in *pipeline.InputStep, steps []Step, sink pipeline.Sink) (pipeline.Step, error) {
	b := pipeline.From(in)
	for _, s := range steps {
		b = b.In(s.Scope...)
		var err error
		b, err = applyStep(b, s)
		if err != nil {
			return nil, err
		}
	}
	return b.Build(sink)
}

func applyStep(b pipeline.Builder, s Step) (pipeline.Builder, error) {
	switch s.Kind {
	case "defineProperty":
		compute, err := pipeline.Expr(s.Expression)
		if err != nil {
			return b, fmt.Errorf("defineProperty %s: %w", s.PropertyName, err)
		}
		return b.DefineProperty(s.PropertyName, compute), nil
	case "dropProperty":
		return b.DropProperty(s.PropertyName), nil
	case "filter":
		pred, err := pipeline.ExprPredicate(s.Expression)
		if err != nil {
			return b, fmt.Errorf("filter: %w", err)
		}
		return b.Filter(pred), nil
	case "groupBy":
		return b.GroupBy(s.ArrayName, s.GroupNames...), nil
	case "dropArray":
		return b.DropArray(s.ArrayName), nil
	case "sum":
		return b.Sum(s.ArrayName, s.PropertyName), nil
	case "count":
		return b.Count(s.ArrayName, s.PropertyName), nil
	case "min":
		return b.Min(s.ArrayName, s.PropertyName), nil
	case "max":
		return b.Max(s.ArrayName, s.PropertyName), nil
	case "average":
		return b.Average(s.ArrayName, s.PropertyName), nil
	case "pickByMin":
		return b.PickByMin(s.ArrayName, s.PropertyName, s.OutputName), nil
	case "pickByMax":
		return b.PickByMax(s.ArrayName, s.PropertyName, s.OutputName), nil
	default:
		return b, fmt.Errorf("unrecognized pipeline step kind %q", s.Kind)
	}
}
