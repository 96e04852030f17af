package main

import (
	"context"
	"fmt"
	"net/mail"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core/grading"
)

func (cli *commandLine) printResults(classID string, term grading.Term) error {
	report, err := cli.gradingSvc.ClassReport(context.Background(), classID, term)
	if err != nil {
		return errors.Wrap(err, "computing class results")
	}

	fmt.Fprintf(cli.out, "%s - %s\n\n", report.ClassID, report.Term)
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSTUDENT\tAVERAGE\tSTATUS")
	for _, res := range report.Results {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", res.Rank, res.StudentID, res.GeneralAverage, res.Status)
	}
	if err = w.Flush(); err != nil {
		return err
	}

	s := report.Summary
	fmt.Fprintf(cli.out, "\nstudents: %d  average: %.2f  highest: %.2f  lowest: %.2f  passed: %d (%.2f%%)\n",
		s.StudentCount, s.Average, s.Highest, s.Lowest, s.PassCount, s.PassRate)
	return nil
}

func (cli *commandLine) printAnnualResults(classID string) error {
	results, err := cli.gradingSvc.AnnualResults(context.Background(), classID)
	if err != nil {
		return errors.Wrap(err, "computing annual results")
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSTUDENT\tT1\tT2\tT3\tAVERAGE\tSTATUS")
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%s", res.Rank, res.StudentID)
		for _, term := range grading.Terms {
			if avg, ok := res.TermAverages[term]; ok {
				fmt.Fprintf(w, "\t%.2f", avg)
			} else {
				fmt.Fprint(w, "\t-")
			}
		}
		fmt.Fprintf(w, "\t%.2f\t%s\n", res.AnnualAverage, res.Status)
	}
	return w.Flush()
}

func (cli *commandLine) mailResults(classID string, term grading.Term, to []mail.Address) error {
	report, err := cli.gradingSvc.ClassReport(context.Background(), classID, term)
	if err != nil {
		return errors.Wrap(err, "computing class results")
	}
	mailSvc, err := cli.mailSvc()
	if err != nil {
		return errors.Wrap(err, "setting up email service")
	}
	if err = mailSvc.SendMessages(grading.NewClassResultsEmail(report, to...)); err != nil {
		return errors.Wrap(err, "sending class results")
	}
	fmt.Fprintf(cli.out, "results of %s (%s) sent to %d recipient(s)\n", report.ClassID, report.Term, len(to))
	return nil
}
