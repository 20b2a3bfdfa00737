// Command jstarvm is a thin demo driver over the vm package: it has no
// lexer/parser/compiler front end (§1 treats those as external
// collaborators), so every program it runs is hand-assembled through the
// asm package instead of read from a .jsr source file. Grounded on
// wudi-hey/cmd/hey/main.go's urfave/cli/v3 command structure.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jstar-lang/jstar/vm"
)

func main() {
	app := &cli.Command{
		Name:  "jstarvm",
		Usage: "Run the bundled bytecode demo scenarios against the J* virtual machine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scenario",
				Usage: "name of a single scenario to run (default: run them all)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML VM configuration file",
			},
			&cli.BoolFlag{
				Name:  "profile",
				Usage: "print an opcode-dispatch hot-spot report after each scenario",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "list available scenarios and exit",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jstarvm:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	all := scenarios(out)

	if cmd.Bool("list") {
		for _, s := range all {
			fmt.Fprintf(out, "%-20s %s\n", s.name, s.doc)
		}
		return nil
	}

	conf, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	want := cmd.String("scenario")
	ran := false
	for _, s := range all {
		if want != "" && s.name != want {
			continue
		}
		ran = true
		if err := runScenario(out, conf, cmd.Bool("profile"), s); err != nil {
			return fmt.Errorf("scenario %q: %w", s.name, err)
		}
	}
	if want != "" && !ran {
		return fmt.Errorf("no such scenario %q (try --list)", want)
	}
	return nil
}

func loadConfig(path string) (vm.Config, error) {
	if path == "" {
		return vm.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return vm.Config{}, err
	}
	defer f.Close()
	return vm.LoadConfig(f)
}

func runScenario(out *bufio.Writer, conf vm.Config, profile bool, s scenario) error {
	fmt.Fprintf(out, "=== %s ===\n", s.name)
	out.Flush()

	machine := vm.New(conf, nil)
	if profile {
		machine.EnableProfiling()
	}

	_, runErr := machine.Run(s.name, s.fn, nil)
	out.Flush()
	if runErr != nil {
		if uncaught, ok := runErr.(*vm.UncaughtException); ok {
			fmt.Fprintln(out, "uncaught exception:", uncaught.Formatted)
		} else {
			return runErr
		}
	}
	if profile {
		machine.ReportProfile(out)
	}
	out.Flush()
	return nil
}
