package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/bmattach/internal/model"
	"github.com/nhle/bmattach/internal/store"
)

// runner holds the global flags shared by every subcommand.
type runner struct {
	configPath string
	verbose    bool
	assumeYes  bool
}

// NewRootCommand builds the bmattach command tree.
func NewRootCommand() *cobra.Command {
	r := &runner{}

	root := &cobra.Command{
		Use:   "bmattach",
		Short: "Embed, inspect and extract attachments in message bodies",
		Long: `bmattach embeds files into plain-text message bodies as base64 blocks
and finds, saves and redacts those blocks when a message is read.

Examples:
  bmattach encode photo.png notes.txt --body draft.txt > message.txt
  bmattach scan message.txt
  bmattach read message.txt
  bmattach extract message.txt --dir ./attachments
  bmattach history --images`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&r.configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().BoolVarP(&r.assumeYes, "yes", "y", false, "answer yes to every prompt")

	root.AddCommand(newEncodeCommand(r))
	root.AddCommand(newScanCommand(r))
	root.AddCommand(newReadCommand(r))
	root.AddCommand(newExtractCommand(r))
	root.AddCommand(newHistoryCommand(r))
	root.AddCommand(newConfigCommand(r))

	return root
}

func newEncodeCommand(r *runner) *cobra.Command {
	var bodyPath, outPath string

	cmd := &cobra.Command{
		Use:   "encode FILE...",
		Short: "Encode files as attachment blocks, optionally appended to a message body",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := r.open(cmd, false, nil)
			if err != nil {
				return err
			}
			defer done()

			body := ""
			if bodyPath != "" {
				if body, err = readMessage(cmd, bodyPath); err != nil {
					return err
				}
			}

			text, err := a.Compose(body, args)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", outPath, err)
				}
				return nil
			}
			a.printf("%s\n", text)
			return nil
		},
	}

	cmd.Flags().StringVar(&bodyPath, "body", "", "message body file to append the attachments to (- for stdin)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the result to a file instead of stdout")
	return cmd
}

func newScanCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "scan MESSAGE",
		Short: "List the attachments embedded in a message (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := r.open(cmd, false, nil)
			if err != nil {
				return err
			}
			defer done()

			message, err := readMessage(cmd, args[0])
			if err != nil {
				return err
			}
			return a.ListBlocks(args[0], message)
		},
	}
}

func newReadCommand(r *runner) *cobra.Command {
	var saveAll, noSave bool
	var dir string

	cmd := &cobra.Command{
		Use:   "read MESSAGE",
		Short: "Show a message with attachment data removed, offering to save each attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := r.open(cmd, !noSave, saveDirOverride(dir))
			if err != nil {
				return err
			}
			defer done()

			message, err := readMessage(cmd, args[0])
			if err != nil {
				return err
			}

			mode := SaveAsk
			switch {
			case saveAll:
				mode = SaveAll
			case noSave:
				mode = SaveNone
			}
			return a.Read(cmd.Context(), args[0], message, mode)
		},
	}

	cmd.Flags().BoolVar(&saveAll, "save-all", false, "save every attachment without asking")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "only display the message")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to save attachments in (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("save-all", "no-save")
	return cmd
}

func newExtractCommand(r *runner) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "extract MESSAGE",
		Short: "Save every attachment in a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := r.open(cmd, true, saveDirOverride(dir))
			if err != nil {
				return err
			}
			defer done()

			message, err := readMessage(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = a.Extract(cmd.Context(), args[0], message)
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to save attachments in (overrides config)")
	return cmd
}

func newHistoryCommand(r *runner) *cobra.Command {
	var query string
	var limit int
	var imagesOnly bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously saved attachments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := r.open(cmd, true, nil)
			if err != nil {
				return err
			}
			defer done()

			filter := store.AttachmentFilter{Limit: limit, ImagesOnly: imagesOnly}
			if query != "" {
				filter.Query = &query
			}
			return a.History(cmd.Context(), filter)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by filename")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	cmd.Flags().BoolVar(&imagesOnly, "images", false, "only list images")
	return cmd
}

func newConfigCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(r.configPath); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", r.configPath)
			}
			if err := model.SaveConfig(r.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", r.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), r.configPath)
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

// open loads the configuration and builds an App. The returned cleanup
// closes the catalog when one was opened.
func (r *runner) open(
	cmd *cobra.Command, withStore bool, configure func(*model.AppConfig),
) (*App, func(), error) {
	cfg, err := model.LoadConfig(r.configPath)
	if err != nil {
		return nil, nil, err
	}
	if configure != nil {
		configure(cfg)
	}

	logger := newLogger(cmd.ErrOrStderr(), r.verbose)
	opts := Options{
		Prompter: r.prompter(),
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
		Logger:   logger,
	}

	cleanup := func() {}
	if withStore {
		dir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating catalog directory %s: %w", dir, err)
		}
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening catalog %s: %w", cfg.Store.Path, err)
		}
		opts.Store = st
		cleanup = func() {
			if err := st.Close(); err != nil {
				logger.Warn("closing catalog", "error", err)
			}
		}
	}

	a, err := New(cfg, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

// prompter picks the interactive prompter only when stdin is a terminal.
func (r *runner) prompter() Prompter {
	if r.assumeYes {
		return FixedPrompter(true)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return FixedPrompter(false)
	}
	return HuhPrompter{}
}

// saveDirOverride returns a config hook replacing the save directory when
// dir is set.
func saveDirOverride(dir string) func(*model.AppConfig) {
	if dir == "" {
		return nil
	}
	return func(cfg *model.AppConfig) {
		cfg.Attachments.SaveDir = dir
	}
}

// newLogger logs warnings and errors as text, or everything with verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readMessage reads a message body from path, or stdin for "-".
func readMessage(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading message %s: %w", path, err)
	}
	return string(data), nil
}
