package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	gradingSvc *grading.Service
	mailSvc    func() (core.EmailService, error) // built on demand by mailresults
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command (up, up-to VERSION, down, status, ...)")
	fmt.Fprintln(cli.out, "  results -class CLASS -term TERM [-annual] - print the ranking of a class")
	fmt.Fprintln(cli.out, "  mailresults -class CLASS -term TERM -to EMAIL[,EMAIL] - email the ranking of a class")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resultsCmd := flag.NewFlagSet("results", flag.ExitOnError)
	resultsClass := resultsCmd.String("class", "", "The class ID.")
	resultsTerm := resultsCmd.String("term", "", "The term: 1, 2, 3 or its full label. Ignored with -annual.")
	resultsAnnual := resultsCmd.Bool("annual", false, "Rank on the average of every term.")

	mailCmd := flag.NewFlagSet("mailresults", flag.ExitOnError)
	mailClass := mailCmd.String("class", "", "The class ID.")
	mailTerm := mailCmd.String("term", "", "The term: 1, 2, 3 or its full label.")
	mailTo := mailCmd.String("to", "", "Comma separated recipient emails.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "results":
		if err := resultsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resultsClass == "" || (*resultsTerm == "" && !*resultsAnnual) {
			resultsCmd.Usage()
			return errHelp
		}
		if *resultsAnnual {
			return cli.printAnnualResults(*resultsClass)
		}
		term, err := grading.ParseTerm(*resultsTerm)
		if err != nil {
			return err
		}
		return cli.printResults(*resultsClass, term)
	case "mailresults":
		if err := mailCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mailClass == "" || *mailTerm == "" || *mailTo == "" {
			mailCmd.Usage()
			return errHelp
		}
		term, err := grading.ParseTerm(*mailTerm)
		if err != nil {
			return err
		}
		to, err := parseAddresses(*mailTo)
		if err != nil {
			return err
		}
		return cli.mailResults(*mailClass, term, to)
	default:
		cli.printUsage()
		return errHelp
	}
}

func parseAddresses(s string) ([]mail.Address, error) {
	addrs := make([]mail.Address, 0)
	for _, raw := range strings.Split(s, ",") {
		if raw = core.CleanString(raw); raw == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid email %q: %v", raw, err)
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}
