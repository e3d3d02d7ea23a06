package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/cacack/ged7/selector"
	"github.com/cacack/ged7/typed"
)

var activeDataset *typed.Dataset

func startREPL(d *typed.Dataset) {
	activeDataset = d

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "go-prompt panicked, falling back to plain input:", r)
			startSimpleREPL()
		}
	}()

	info, err := os.Stdin.Stat()
	if err != nil || (info.Mode()&os.ModeCharDevice) == 0 {
		startSimpleREPL()
		return
	}

	p := prompt.New(
		executor,
		completer,
		prompt.OptionPrefix("gedshell> "),
		prompt.OptionTitle("ged7 selector shell"),
		prompt.OptionPrefixTextColor(prompt.Cyan),
	)
	p.Run()
}

func startSimpleREPL() {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("gedshell> ")
		if !scanner.Scan() {
			break
		}
		executor(scanner.Text())
	}
}

func executor(in string) {
	in = strings.TrimSpace(in)
	if in == "" {
		return
	}
	if in == "exit" || in == "quit" {
		os.Exit(0)
	}

	matches := selector.Select(activeDataset.Roots(), in)
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, n := range matches {
		h := activeDataset.HandleOf(n)
		printStructure(h)
	}
}

func printStructure(h typed.Handle) {
	s := activeDataset.Get(h)
	tag := activeDataset.Lookup.Tag(s.Type, false)
	switch s.Payload.Kind {
	case typed.PayloadString:
		fmt.Printf("%s (%s): %q\n", tag, s.Type, s.Payload.Str)
	case typed.PayloadPointer:
		fmt.Printf("%s (%s): -> %s\n", tag, s.Type, activeDataset.Get(s.Payload.Ptr).XRefID)
	default:
		fmt.Printf("%s (%s)\n", tag, s.Type)
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "exit", Description: "leave the shell"},
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
