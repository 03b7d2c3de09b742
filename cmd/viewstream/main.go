// Command viewstream is a demo driver for the incremental view maintenance
// engine in pkg/pipeline. It loads a scenario file (a pipeline recipe plus
// a stream of add/remove events), replays the events, and after each change
// to the materialized state prints a dyff diff of that change — the same
// diffFiles shape cmd/graft/main.go uses for its "diff" verb, pointed at
// successive snapshots of the materialized view instead of two arbitrary
// files.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/cppforlife/go-patch/patch"
	"github.com/geofffranks/yaml"
	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"github.com/mattn/go-isatty"
	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/viewstream/viewstream/log"
	"github.com/viewstream/viewstream/pkg/pipeline"
	"github.com/viewstream/viewstream/pkg/scenario"
)

var printfStdOut = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

var getopts = func(o interface{}) {
	if err := goptions.Parse(o); err != nil {
		goptions.PrintHelp()
		os.Exit(1)
	}
}

func main() {
	var options struct {
		Debug    bool   `goptions:"-D, --debug, description='Enable debugging'"`
		Trace    bool   `goptions:"-T, --trace, description='Enable trace mode debugging (very verbose)'"`
		Color    string `goptions:"--color, description='Control color output (on/off/auto, default: auto)'"`
		EmitOps  bool   `goptions:"--emit-ops, description='Emit each replayed event as a go-patch op fragment on stdout'"`
		Quiet    bool   `goptions:"-q, --quiet, description='Suppress per-change diff output'"`
		Scenario goptions.Remainder `goptions:"description='Scenario YAML file describing the pipeline and its event stream'"`
	}
	getopts(&options)

	if envFlag("DEBUG") || options.Debug {
		log.DebugOn = true
	}
	if envFlag("TRACE") || options.Trace {
		log.TraceOn = true
		log.DebugOn = true
	}

	shouldEnableColor := false
	switch options.Color {
	case "on":
		shouldEnableColor = true
	case "off":
		shouldEnableColor = false
	case "auto", "":
		shouldEnableColor = isatty.IsTerminal(os.Stderr.Fd())
	default:
		log.PrintfStdErr("Invalid --color option: %s. Must be 'on', 'off', or 'auto'.\n", options.Color)
		os.Exit(1)
		return
	}
	ansi.Color(shouldEnableColor)
	log.SetColor(shouldEnableColor)

	if len(options.Scenario) != 1 {
		log.PrintfStdErr("@R{usage}: viewstream [flags] <scenario.yml>\n")
		os.Exit(1)
		return
	}

	if err := run(options.Scenario[0], options.EmitOps, !options.Quiet); err != nil {
		log.PrintfStdErr("%s\n", err.Error())
		os.Exit(2)
		return
	}
}

func envFlag(varname string) bool {
	val := os.Getenv(varname)
	return val != "" && val != "0" && val != "false"
}

func run(scenarioPath string, emitOps bool, showDiffs bool) error {
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return ansi.Errorf("@R{reading scenario file}: %s", err)
	}

	scn, err := scenario.Load(data)
	if err != nil {
		return ansi.Errorf("@R{parsing scenario}: %s", err)
	}

	in := pipeline.NewInput()

	prevPath, err := snapshot(pipeline.KeyedArray{})
	if err != nil {
		return err
	}
	defer func() { os.Remove(prevPath) }()

	opWriter := bufio.NewWriter(os.Stdout)
	defer opWriter.Flush()

	// live remembers the properties each key was added with, so a remove
	// event can hand Remove the item's original properties.
	live := map[string]pipeline.Item{}
	_, err = scenario.Build(in, scn.Pipeline, func(root pipeline.KeyedArray) {
		curPath, err := snapshot(root)
		if err != nil {
			log.PrintfStdErr("snapshot: %s\n", err)
			return
		}

		if showDiffs {
			report, changed, err := diffFiles([]string{prevPath, curPath})
			if err != nil {
				log.PrintfStdErr("diff: %s\n", err)
			} else if changed {
				printfStdOut("%s", report)
			}
		}

		os.Remove(prevPath)
		prevPath = curPath
	})
	if err != nil {
		return ansi.Errorf("@R{building pipeline}: %s", err)
	}

	for i, ev := range scn.Events {
		switch ev.Kind {
		case "add":
			in.Add(ev.Key, ev.Props)
			live[ev.Key] = ev.Props
		case "remove":
			props, ok := live[ev.Key]
			if !ok {
				log.PrintfStdErr("event %d: remove of unknown key %q\n", i, ev.Key)
				continue
			}
			in.Remove(ev.Key, props)
			delete(live, ev.Key)
		default:
			log.PrintfStdErr("event %d: unrecognized kind %q\n", i, ev.Kind)
		}

		if emitOps {
			emitOp(opWriter, ev)
		}
	}

	return nil
}

// snapshot writes root out as a temp YAML document and returns its path,
// so diffFiles can hand two file paths to ytbx.LoadFiles exactly the way
// the "diff" verb does.
func snapshot(root pipeline.KeyedArray) (string, error) {
	f, err := os.CreateTemp("", "viewstream-*.yml")
	if err != nil {
		return "", ansi.Errorf("@R{creating snapshot file}: %s", err)
	}
	defer f.Close()

	out, err := yaml.Marshal(root.ToDoc())
	if err != nil {
		return "", ansi.Errorf("@R{marshaling snapshot}: %s", err)
	}
	if _, err := f.Write(out); err != nil {
		return "", ansi.Errorf("@R{writing snapshot}: %s", err)
	}
	return f.Name(), nil
}

// diffFiles mirrors cmd/graft's diff verb exactly: load both files with
// ytbx, compare with dyff, and render a human report with headers
// omitted.
func diffFiles(paths []string) (string, bool, error) {
	if len(paths) != 2 {
		return "", false, ansi.Errorf("incorrect number of files given to diffFiles()")
	}

	from, to, err := ytbx.LoadFiles(paths[0], paths[1])
	if err != nil {
		return "", false, err
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", false, err
	}

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: false,
		NoTableStyle:      false,
		OmitHeader:        true,
	}

	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	if err := reportWriter.WriteReport(out); err != nil {
		return "", false, err
	}
	out.Flush()

	return buf.String(), len(report.Diffs) > 0, nil
}

// emitOp writes a single go-patch op fragment describing one replayed
// event — an auxiliary export path, not something the materializer's own
// reducers depend on (see SPEC_FULL.md's DOMAIN STACK entry for
// cppforlife/go-patch).
func emitOp(w *bufio.Writer, ev scenario.Event) {
	p := "/" + ev.Key
	def := patch.OpDefinition{Type: "replace", Path: &p}
	if ev.Kind == "remove" {
		def.Type = "remove"
	} else {
		var value interface{} = map[string]interface{}(ev.Props)
		def.Value = &value
	}

	out, err := yaml.Marshal([]patch.OpDefinition{def})
	if err != nil {
		log.PrintfStdErr("emit-ops: %s\n", err)
		return
	}
	fmt.Fprintf(w, "%s", out)
	w.Flush()
}
