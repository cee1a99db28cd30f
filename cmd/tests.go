package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/proctor/internal/exam"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List the loaded tests",
	Long:  "List the tests loaded from the tests directory. Files that fail validation are logged and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		list := e.svc.Tests()
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintf(out, "No tests found in %s\n", e.cfg.TestsDir)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tQUESTIONS\tMODE\tBOOKLET")
		for _, s := range list {
			t, err := e.svc.Test(s.ID)
			if err != nil {
				return err
			}
			mode := "answer sheet"
			if t.HasOptions() {
				mode = "options"
			}
			booklet := "-"
			if t.PDFFile != "" {
				booklet = t.PDFFile
				if _, err := os.Stat(e.svc.BookletPath(t)); err != nil {
					booklet += " (missing)"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.Name, s.QuestionCount, mode, booklet)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nTime limit: %s\n", exam.FormatLimit(e.cfg.TimeLimit))
		return nil
	},
}
