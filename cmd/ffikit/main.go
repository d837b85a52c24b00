// Command ffikit generates foreign-language bindings from a compiled shared
// library with embedded interface metadata.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ffikit/ffikit"
	"github.com/ffikit/ffikit/gen"
	"github.com/ffikit/ffikit/introspect"
	"github.com/ffikit/ffikit/ir"
	"github.com/ffikit/ffikit/meta"
)

var optLogLevel string

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func main() {
	root := &cobra.Command{
		Use:           "ffikit",
		Short:         "Generate foreign-language bindings from a compiled shared library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(optLogLevel)
		},
	}
	root.PersistentFlags().StringVar(&optLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(newGenerateCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		crateRoot  string
		configPath string
		outDir     string
		languages  []string
		format     bool
	)
	cmd := &cobra.Command{
		Use:   "generate <library>",
		Short: "Generate bindings for every crate found in a shared library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			libraryPath := args[0]

			targets := make([]gen.TargetLanguage, 0, len(languages))
			for _, l := range languages {
				lang, err := gen.ParseTargetLanguage(l)
				if err != nil {
					return err
				}
				targets = append(targets, lang)
			}
			if len(targets) == 0 {
				targets = gen.AllLanguages()
			}

			slog.Info("generating bindings",
				"library", libraryPath,
				"out_dir", outDir,
				"languages", fmt.Sprint(targets))

			sources, err := ffikit.GenerateBindings(libraryPath, crateRoot, configPath, targets, outDir, format)
			if err != nil {
				return err
			}
			for _, source := range sources {
				slog.Info("generated crate bindings",
					"crate", source.CrateName,
					"namespace", source.CI.Namespace())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&crateRoot, "crate-root", ".", "directory containing ffikit.toml")
	cmd.Flags().StringVar(&configPath, "config", "", "explicit configuration file (overrides the crate-root lookup)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "bindings", "output directory (created if absent)")
	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "target language (repeatable; default: all)")
	cmd.Flags().BoolVar(&format, "format", false, "run the language's code formatter on the output, if installed")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <library>",
		Short: "Summarize the interface metadata embedded in a shared library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			libraryPath := args[0]

			items, err := introspect.ExtractFromLibrary(libraryPath)
			if err != nil {
				return err
			}
			groups := meta.NewGroupSet(items)
			if err := groups.Assign(items); err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Crate", "Namespace", "Functions", "Records", "Enums", "Objects"})
			for _, group := range groups.Groups() {
				ci := ir.New(group.Namespace.CrateName)
				if err := ci.AddMetadata(group); err != nil {
					return err
				}
				table.Append([]string{
					ci.CrateName(),
					ci.Namespace(),
					strconv.Itoa(len(ci.Functions())),
					strconv.Itoa(len(ci.Records())),
					strconv.Itoa(len(ci.Enums())),
					strconv.Itoa(len(ci.Objects())),
				})
			}
			table.Render()

			if name := ffikit.CalcCdylibName(libraryPath); name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "cdylib name: %v\n", name)
			}
			return nil
		},
	}
	return cmd
}
