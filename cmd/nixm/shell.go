package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cbro/nix-manipulator/docmodel"
	"github.com/cbro/nix-manipulator/edit"
)

// runShell starts the interactive REPL named in spec.md §6.2: `parse`,
// `set_value`, `remove_value`, and the current `source`/`source_text` are
// preloaded, with -f FILE pre-seeding them if given.
func runShell(args []string) error {
	cf, fs := bindCommon("shell")
	if err := fs.Parse(args); err != nil {
		return err
	}
	applyLogging(*cf.verbose)

	var sourceText string
	var sf *docmodel.SourceFile
	if *cf.file != "" {
		data, err := readSource(*cf.file)
		if err != nil {
			return err
		}
		sourceText = string(data)
		sf, err = docmodel.Parse(data)
		if err != nil {
			return err
		}
	}

	rl, err := readline.New("nixm> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("nix-manipulator interactive shell. Commands: parse, set_value NPATH VALUE, remove_value NPATH, print, quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		cmd, rest := splitCommand(strings.TrimSpace(line))
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "parse":
			sourceText = rest
			parsed, perr := docmodel.Parse([]byte(rest))
			if perr != nil {
				fmt.Println("error:", perr)
				continue
			}
			sf = parsed
			fmt.Println("OK")
		case "set_value":
			path, value, ok := splitTwo(rest)
			if !ok {
				fmt.Println("usage: set_value NPATH VALUE")
				continue
			}
			parsedPath, perr := edit.ParsePath(path)
			if perr != nil {
				fmt.Println("error:", perr)
				continue
			}
			valueDoc, perr := docmodel.Parse([]byte(value))
			if perr != nil {
				fmt.Println("error:", perr)
				continue
			}
			if sf == nil {
				fmt.Println("error: no document loaded, run parse first")
				continue
			}
			if err := edit.Set(sf, parsedPath, valueDoc.Expr); err != nil {
				fmt.Println("error:", err)
				continue
			}
			sourceText = sf.Rebuild()
			fmt.Println(sourceText)
		case "remove_value":
			parsedPath, perr := edit.ParsePath(rest)
			if perr != nil {
				fmt.Println("error:", perr)
				continue
			}
			if sf == nil {
				fmt.Println("error: no document loaded, run parse first")
				continue
			}
			if err := edit.Remove(sf, parsedPath); err != nil {
				fmt.Println("error:", err)
				continue
			}
			sourceText = sf.Rebuild()
			fmt.Println(sourceText)
		case "print":
			fmt.Println(sourceText)
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func splitCommand(line string) (cmd, rest string) {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

func splitTwo(s string) (first, second string, ok bool) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return "", "", false
	}
	return s[:i], strings.TrimSpace(s[i+1:]), true
}
