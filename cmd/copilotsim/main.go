// Command copilotsim runs the concrete scenarios of spec section 8
// against the Copilot Control Scheduler and simulated collaborators,
// printing the resulting marker timeline -- the operational entry point
// analogous to the teacher corpus's cmd/rnxgo, but driving an in-memory
// scheduler instead of parsing files on disk.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/copilotcontrol/scheduler/pkg/clock"
	"github.com/copilotcontrol/scheduler/pkg/gpsfix"
	"github.com/copilotcontrol/scheduler/pkg/marker"
	"github.com/copilotcontrol/scheduler/pkg/scheduler"
	"github.com/copilotcontrol/scheduler/pkg/simcollab"
)

const elevenMinutesUs = 11 * 60 * 1_000_000

type scenario struct {
	name        string
	description string
	startMinute int
	run         func(h *harness)
}

var scenarios = []scenario{
	{
		name:        "s1-default-flight",
		description: "default flight with GPS, empty scripts and definitions for every slot",
		startMinute: 0,
		run: func(h *harness) {
			h.sched.Start()
			h.deliver3D("2025-01-01 12:10:00.500")
			h.run(elevenMinutesUs)
		},
	},
	{
		name:        "s2-coast-only",
		description: "time-only lock, no 3D fix -- a pure coast window",
		startMinute: 0,
		run: func(h *harness) {
			h.sched.Start()
			h.deliverTime("2025-01-01 12:10:00.500")
			h.run(elevenMinutesUs)
		},
	},
	{
		name:        "s3-all-custom",
		description: "all five slots custom, GPS-locked",
		startMinute: 0,
		run: func(h *harness) {
			for slot := 1; slot <= 5; slot++ {
				h.scripts.Slots[slot] = simcollab.SlotScript{UsesGps: true, UsesMsg: true, HasMsgDef: true, RunOk: true}
			}
			h.sched.Start()
			h.deliver3D("2025-01-01 12:10:00.500")
			h.run(elevenMinutesUs)
		},
	},
	{
		name:        "s4-custom-fails-default-available",
		description: "slot 2's custom script fails, built-in default still reachable",
		startMinute: 0,
		run: func(h *harness) {
			h.scripts.Slots[2] = simcollab.SlotScript{UsesMsg: true, HasMsgDef: true, RunOk: false}
			h.sched.Start()
			h.deliver3D("2025-01-01 12:10:00.500")
			h.run(elevenMinutesUs)
		},
	},
	{
		name:        "s5-custom-fails-no-default",
		description: "slot 3's custom script fails, no built-in default to fall back to",
		startMinute: 0,
		run: func(h *harness) {
			h.scripts.Slots[3] = simcollab.SlotScript{UsesMsg: true, HasMsgDef: true, RunOk: false}
			h.sched.Start()
			h.deliver3D("2025-01-01 12:10:00.500")
			h.run(elevenMinutesUs)
		},
	},
	{
		name:        "s6-cache-merge-new-3d",
		description: "a fresher 3D fix arrives during lockout and is merged at lockout end",
		startMinute: 2,
		run: func(h *harness) {
			h.sched.Start()
			h.deliver3D("2025-01-01 12:21:30.000")
			h.run(29_000_000)
			h.deliver3D("2025-01-01 12:21:30.500")
			h.run(29_000_000 + elevenMinutesUs)
		},
	},
}

// harness bundles a Scheduler with simulated collaborators; the scheduler
// package's tests define an equivalent harness of their own.
type harness struct {
	clk      *clock.ManualClock
	gps      *simcollab.GPS
	radio    *simcollab.Radio
	cspeed   *simcollab.ClockSpeed
	scripts  *simcollab.ScriptRunner
	watchdog *simcollab.Watchdog
	rec      *marker.Recorder
	sched    *scheduler.Scheduler
}

func newHarness(startMinute int) *harness {
	h := &harness{
		clk:      clock.NewManualClock(0),
		gps:      &simcollab.GPS{},
		radio:    &simcollab.Radio{},
		cspeed:   &simcollab.ClockSpeed{},
		scripts:  simcollab.NewScriptRunner(),
		watchdog: &simcollab.Watchdog{},
		rec:      marker.NewRecorder(),
	}
	h.sched = scheduler.New(scheduler.Config{StartMinute: startMinute}, h.clk, h.gps, h.radio, h.cspeed, h.scripts, h.watchdog, h.rec)
	return h
}

func (h *harness) run(horizonUs int64) {
	const stepUs = 100_000
	for h.clk.NowUs() < horizonUs {
		h.clk.Advance(stepUs)
		h.sched.Tick(h.clk.NowUs())
	}
}

func (h *harness) deliver3D(s string) {
	f, err := gpsfix.ParseFix(s)
	if err != nil {
		log.Fatalf("copilotsim: %v", err)
	}
	h.sched.OnGps3DPlusLock(gpsfix.Fix3DPlus{Fix: f})
}

func (h *harness) deliverTime(s string) {
	f, err := gpsfix.ParseFix(s)
	if err != nil {
		log.Fatalf("copilotsim: %v", err)
	}
	h.sched.OnGpsTimeLock(gpsfix.FixTime{Fix: f})
}

func main() {
	app := &cli.App{
		Name:      "copilotsim",
		Usage:     "drive the Copilot Control Scheduler through a named scenario",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		HelpName:  "copilotsim",
		ArgsUsage: "[scenario]",
		Commands:  buildCommands(),
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return listScenarios(c)
			}
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommands() []*cli.Command {
	cmds := make([]*cli.Command, 0, len(scenarios)+1)
	cmds = append(cmds, &cli.Command{
		Name:  "list",
		Usage: "list available scenarios",
		Action: func(c *cli.Context) error {
			return listScenarios(c)
		},
	})
	for _, sc := range scenarios {
		sc := sc
		cmds = append(cmds, &cli.Command{
			Name:  sc.name,
			Usage: sc.description,
			Action: func(c *cli.Context) error {
				h := newHarness(sc.startMinute)
				sc.run(h)
				printTimeline(c, h.rec)
				return nil
			},
		})
	}
	return cmds
}

func listScenarios(c *cli.Context) error {
	for _, sc := range scenarios {
		fmt.Fprintf(c.App.Writer, "%-28s %s\n", sc.name, sc.description)
	}
	return nil
}

func printTimeline(c *cli.Context, rec *marker.Recorder) {
	for _, m := range rec.All() {
		if m.Annotation != "" {
			fmt.Fprintf(c.App.Writer, "%10d us  %-40s %s\n", m.TimeUs, m.Tag, m.Annotation)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%10d us  %s\n", m.TimeUs, m.Tag)
	}
}
