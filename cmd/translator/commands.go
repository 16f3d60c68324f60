package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/pricofy/word-translator/internal/app"
	"github.com/pricofy/word-translator/internal/config"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/logging"
	"github.com/pricofy/word-translator/internal/server"
	"github.com/pricofy/word-translator/internal/storage"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rootOptions struct {
	configPath string
	logLevel   string
	seedPath   string
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "translator",
		Short: "Word-level dictionary translator",
		Long: `Translates text word by word using per-language dictionaries.

Each language defines the characters it allows, the characters that split
text into words and its known words with their meanings in other languages.

Example:
  translator serve --config translator.yaml
  translator translate "hello world" --from en --to elb`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.seedPath, "seed", "", "Path to the dictionary seed file (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newTranslateCmd(opts),
		newRegisterCmd(opts),
		newLanguagesCmd(opts),
		newExportCmd(opts),
		newExamplesCmd(),
	)
	return rootCmd
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.seedPath != "" {
		cfg.Dictionary.SeedPath = o.seedPath
	}
	return cfg, nil
}

func (o *rootOptions) openApp(ctx context.Context, logOut io.Writer) (*app.App, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logging.New(cfg.Log, logOut))
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translate and register API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.openApp(ctx, os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Config.Dictionary.Watch {
				w, err := storage.NewWatcher(a.Config.Dictionary.SeedPath, a.Reload, a.Logger)
				if err != nil {
					return fmt.Errorf("watch seed: %w", err)
				}
				if err := w.Start(ctx); err != nil {
					return fmt.Errorf("watch seed: %w", err)
				}
				defer w.Stop()
			}

			if port == 0 {
				port = a.Config.Server.Port
			}
			srv := server.New(a.Handler, a.Metrics.Handler(), a.Logger)
			return srv.Run(ctx, fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "translate <content>",
		Short: "Translate content once and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Handler.Translate(cmd.Context(), domain.NewTransReq(args[0], from, to))
			if err != nil {
				printJSON(cmd.OutOrStdout(), domain.TransErr{Content: err.Error()})
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source language id")
	cmd.Flags().StringVar(&to, "to", "", "Destination language id")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		from, to, word string
		meanings       []string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a word and its meanings in the journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Config.Dictionary.JournalPath == ":memory:" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: journal is in memory, the registration will not be kept")
			}

			err = a.Handler.Register(cmd.Context(), domain.NewRegistration(from, to, word, meanings...))
			if err != nil {
				printJSON(cmd.OutOrStdout(), domain.NewTransErr{Content: err.Error()})
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q (%s -> %s)\n", word, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Language of the word")
	cmd.Flags().StringVar(&to, "to", "", "Language of the meanings")
	cmd.Flags().StringVar(&word, "word", "", "Word to register")
	cmd.Flags().StringArrayVar(&meanings, "meaning", nil, "Meaning in the destination language (repeatable)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("word")
	_ = cmd.MarkFlagRequired("meaning")
	return cmd
}

func newLanguagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the registered languages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			for _, l := range a.Handler.Languages() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d words\n", l.ID, l.Label, l.Words)
			}
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [lang...]",
		Short: "Write the dictionary, journal included, as a seed file to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ids := args
			if len(ids) == 0 {
				for _, l := range a.Handler.Languages() {
					ids = append(ids, l.ID)
				}
			}

			langs := make([]domain.Language, 0, len(ids))
			for _, id := range ids {
				lang, err := a.Handler.Language(id)
				if err != nil {
					return err
				}
				langs = append(langs, lang)
			}
			return storage.WriteSeed(cmd.OutOrStdout(), langs...)
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Print example request payloads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "POST /translate")
			printJSON(out, domain.ExampleTransReq())
			fmt.Fprintln(out, "POST /words")
			printJSON(out, domain.ExampleNewTransReq())
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, string(data))
}
