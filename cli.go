package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/advisor"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/config"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/schema"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/services"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// severityColors maps classifier severities to terminal colours.
var severityColors = map[string]color.Attribute{
	"red":    color.FgRed,
	"orange": color.FgHiRed,
	"yellow": color.FgYellow,
	"purple": color.FgMagenta,
	"blue":   color.FgBlue,
	"gray":   color.FgHiBlack,
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	hintColor = color.New(color.FgCyan)
)

// queryArg joins the positional arguments so unquoted SQL works.
func queryArg(args []string) string {
	return strings.Join(args, " ")
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <sql>",
		Short: "Check that a statement is a single non-destructive query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			query := queryArg(args)
			if err := sqlpkg.CheckQuery(query); err != nil {
				failColor.Fprintln(out, "rejected")
				fmt.Fprintln(out, err.Error())
				return fmt.Errorf("query rejected")
			}
			okColor.Fprintln(out, "valid")
			fmt.Fprintln(out, sqlpkg.ValidateAndNormalize(query).NormalizedSQL)
			return nil
		},
	}
}

func newConvertCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "convert <sql>",
		Short: "Rewrite a statement's surface syntax for another dialect",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converted, err := sqlpkg.ConvertTo(queryArg(args), target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), converted)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", string(sqlpkg.PostgreSQL), "target dialect (mysql, postgresql, sqlite, mssql)")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "suggest <sql>",
		Short: "Print optimization advice for a statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *schema.Schema
			if schemaPath != "" {
				data, err := os.ReadFile(schemaPath)
				if err != nil {
					return fmt.Errorf("read schema: %w", err)
				}
				s, err = schema.Parse(data, schema.DetectFormat(schemaPath, data))
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			suggestions := advisor.Suggest(queryArg(args), s)
			if len(suggestions) == 0 {
				okColor.Fprintln(out, "no suggestions")
				return nil
			}
			for _, sug := range suggestions {
				hintColor.Fprintf(out, "- %s\n", sug)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON or YAML schema file")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <error message>",
		Short: "Categorize a database error message and suggest a fix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printClassification(cmd.OutOrStdout(), advisor.Classify(queryArg(args)))
			return nil
		},
	}
}

func printClassification(w io.Writer, c advisor.Classification) {
	attr, ok := severityColors[c.Severity]
	if !ok {
		attr = color.Reset
	}
	color.New(attr, color.Bold).Fprintf(w, "[%s] %s\n", c.Category, c.Message)
	hintColor.Fprintf(w, "suggestion: %s\n", c.Suggestion)
}

func newHistoryCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		limit     int
		keyword   string
		dialect   string
		favorites bool
		export    string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, search or export the query history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store := history.Open(cfg.Storage.HistoryFile, zap.NewNop())
			out := cmd.OutOrStdout()

			if export != "" {
				format, err := services.ParseExportFormat(export)
				if err != nil {
					return err
				}
				return services.ExportHistory(out, format, store.All())
			}

			var records []history.Record
			switch {
			case favorites:
				records = store.Favorites()
			case keyword != "":
				records = store.Search(keyword, dialect)
			default:
				records = store.Recent(limit)
			}
			printRecords(out, records)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent entries")
	cmd.Flags().StringVar(&keyword, "search", "", "case-insensitive keyword")
	cmd.Flags().StringVar(&dialect, "dialect", "", "restrict search to one dialect")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "list favorites only")
	cmd.Flags().StringVar(&export, "export", "", "write the full history as csv or xlsx to stdout")
	return cmd
}

func printRecords(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no queries")
		return
	}
	for _, r := range records {
		star := " "
		if r.Favorite {
			star = "*"
		}
		hintColor.Fprintf(w, "%s %s [%s]\n", star, r.Timestamp, r.Dialect)
		fmt.Fprintf(w, "  %s\n  %s\n", r.NaturalQuery, r.SQLQuery)
	}
}
