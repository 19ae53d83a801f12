// Package main provides the CLI entry point for nixm, the command-line
// front end over nix-manipulator.
//
// Usage:
//
//	nixm set NPATH VALUE [-f FILE]
//	nixm rm NPATH [-f FILE]
//	nixm test [-f FILE]
//	nixm shell [-f FILE]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/edit"
)

var log = logrus.New()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "set":
		err = runSet(os.Args[2:])
	case "rm":
		err = runRemove(os.Args[2:])
	case "test":
		err = runTest(os.Args[2:])
	case "shell":
		err = runShell(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nixm - structural editing for Nix source files

Usage:
  nixm set NPATH VALUE [-f FILE] [--verbose] [--config PATH]
  nixm rm NPATH [-f FILE] [--verbose] [--config PATH]
  nixm test [-f FILE]
  nixm shell [-f FILE]

NPATH: an optional run of "@" (scope depth) followed by a dotted path,
e.g. "foo.bar" or "@@server.port".

All commands read stdin unless -f FILE is given; all write to stdout.`)
}

// commonFlags holds the -f/--config/--verbose flags shared by every
// subcommand; bindCommon creates the subcommand's FlagSet with them
// registered.
type commonFlags struct {
	file    *string
	cfgPath *string
	verbose *bool
}

func bindCommon(name string) (*commonFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cf := &commonFlags{
		file:    fs.String("f", "", "read input from FILE instead of stdin"),
		cfgPath: fs.String("config", "", "path to .nix-manipulator.toml"),
		verbose: fs.Bool("verbose", false, "enable debug logging"),
	}
	return cf, fs
}

func applyLogging(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

func readSource(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func runSet(args []string) error {
	cf, fs := bindCommon("set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: nixm set NPATH VALUE")
	}
	applyLogging(*cf.verbose)
	if _, err := loadConfig(*cf.cfgPath); err != nil {
		return err
	}

	source, err := readSource(*cf.file)
	if err != nil {
		return err
	}
	log.WithField("path", fs.Arg(0)).Debug("applying set_value")
	sf, err := edit.SetValue(source, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Print(sf.Rebuild())
	return nil
}

func runRemove(args []string) error {
	cf, fs := bindCommon("rm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: nixm rm NPATH")
	}
	applyLogging(*cf.verbose)
	if _, err := loadConfig(*cf.cfgPath); err != nil {
		return err
	}

	source, err := readSource(*cf.file)
	if err != nil {
		return err
	}
	log.WithField("path", fs.Arg(0)).Debug("applying remove_value")
	sf, err := edit.RemoveValue(source, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Print(sf.Rebuild())
	return nil
}

func runTest(args []string) error {
	cf, fs := bindCommon("test")
	if err := fs.Parse(args); err != nil {
		return err
	}
	applyLogging(*cf.verbose)

	source, err := readSource(*cf.file)
	if err != nil {
		return err
	}
	sf, err := docmodel.Parse(source)
	if err != nil {
		fmt.Println("Fail")
		return err
	}
	_ = sf.Rebuild()
	fmt.Println("OK")
	return nil
}
