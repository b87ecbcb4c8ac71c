package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"procfleet/decode"
	"procfleet/fleet"
	"procfleet/future"
	"procfleet/jobsource"
	"procfleet/launcher"
	"procfleet/ui"
)

func runCmd() *cobra.Command {
	var (
		n          int
		sequential bool
		unlimited  bool
		throttled  bool
		decodeMode string
		linesDelim string
		repeat     int
		fromFile   string
		chroot     bool
		uiMode     string
	)

	cmd := &cobra.Command{
		Use:   "run <program> [args...]",
		Short: "Spawn one or more copies of a program and wait for them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if n <= 0 {
				n = cfg.MaxWorkers
			}

			f, err := fleet.New(cfg)
			if err != nil {
				return err
			}
			defer f.Close()

			specs, err := buildSpecs(args, repeat, fromFile)
			if err != nil {
				return err
			}

			var dec future.Decoder
			switch decodeMode {
			case "bool":
				dec = decode.NewBooleanDecoder()
			case "lines":
				delim := byte('\n')
				if linesDelim != "" {
					delim = linesDelim[0]
				}
				dec = decode.NewStringArrayDecoder(delim)
			default:
				dec = decode.NewStringDecoder()
			}

			src := jobsource.FromSlice(specs, dec)

			var l launcher.Launcher
			if chroot {
				l, err = launcher.New("chroot", cfg.LogsPath+"/chroot")
				if err != nil {
					return err
				}
				if err := l.Setup(); err != nil {
					return err
				}
				src = launcher.Wrap(src, l)
			}

			var fui ui.FleetUI
			switch uiMode {
			case "ncurses":
				fui = ui.NewNcurses()
			case "none":
				fui = nil
			default:
				fui = ui.NewStdout()
			}

			if l != nil {
				f.SetActiveCleanup(func() { l.Cleanup() })
			}
			installSignalCleanup(f)

			mode := fleet.RunParallelBounded
			switch {
			case sequential:
				mode = fleet.RunSequential
			case unlimited:
				mode = fleet.RunParallelUnlimited
			case throttled:
				mode = fleet.RunParallelThrottled
			}

			summary, err := f.Run(src, fleet.RunOptions{Mode: mode, N: n, UI: fui})

			if l != nil {
				l.Cleanup()
				f.ClearActiveCleanup()
			}

			if err != nil {
				return err
			}

			fmt.Printf("Total: %d  Succeeded: %d  Failed: %d  Skipped: %d  Duration: %s\n",
				summary.Total, summary.Succeeded, summary.Failed, summary.Skipped, summary.Duration)

			if summary.Failed > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "concurrency bound (default: configured max_workers)")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "run jobs one at a time")
	cmd.Flags().BoolVar(&unlimited, "unlimited", false, "run all jobs concurrently, uncapped")
	cmd.Flags().BoolVar(&throttled, "throttled", false, "adapt concurrency to live load/swap")
	cmd.Flags().StringVar(&decodeMode, "decode", "string", "how to decode captured stdout: string|bool|lines")
	cmd.Flags().StringVar(&linesDelim, "lines-delim", "\n", "line delimiter when --decode=lines")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "spawn this many copies of the same program+args")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "read newline-delimited argument lists instead of --repeat")
	cmd.Flags().BoolVar(&chroot, "chroot", false, "run each job inside an isolated chroot environment")
	cmd.Flags().StringVar(&uiMode, "ui", "stdout", "progress display: stdout|ncurses|none")

	return cmd
}

// buildSpecs produces the JobSpec list for a run command invocation: either
// `repeat` copies of program+args, or one JobSpec per line of fromFile (each
// line whitespace-split and appended after args[1:], program held fixed).
func buildSpecs(args []string, repeat int, fromFile string) ([]future.JobSpec, error) {
	program := args[0]
	extraArgs := args[1:]

	if fromFile == "" {
		specs := make([]future.JobSpec, repeat)
		for i := range specs {
			specs[i] = future.JobSpec{Path: program, Args: extraArgs}
		}
		return specs, nil
	}

	file, err := os.Open(fromFile)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fromFile, err)
	}
	defer file.Close()

	var specs []future.JobSpec
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lineArgs := append(append([]string{}, extraArgs...), splitFields(line)...)
		specs = append(specs, future.JobSpec{Path: program, Args: lineArgs})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", fromFile, err)
	}
	return specs, nil
}

func splitFields(line string) []string {
	var fields []string
	start := -1
	for i, r := range line {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields
}

// installSignalCleanup installs a SIGINT/SIGTERM/SIGHUP handler that
// triggers the active launcher's Cleanup before the process exits, so a
// chroot's mounts aren't left behind by Ctrl+C.
func installSignalCleanup(f *fleet.Fleet) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nprocfleet: received %v, cleaning up...\n", sig)
		if cleanup := f.ActiveCleanup(); cleanup != nil {
			cleanup()
		}
		os.Exit(130)
	}()
}
