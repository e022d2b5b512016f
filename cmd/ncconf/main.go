// Command ncconf validates, migrates and inspects FluidNC-style machine
// configurations.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/reoring/ncconf/board"
	"github.com/reoring/ncconf/i18n"
	"github.com/reoring/ncconf/importer"
)

var (
	cfgFile string

	logger = log.New(os.Stderr, "[ncconf] ", log.LstdFlags)
	boards *board.Table
	out    styles
)

// errFailed is returned when a command printed its own findings and only
// needs a non-zero exit status.
var errFailed = errors.New("check failed")

var rootCmd = &cobra.Command{
	Use:   "ncconf",
	Short: "Validate, migrate and inspect machine configurations",
	Long: `ncconf checks FluidNC-style YAML/JSON machine configurations.

Legacy layouts are rewritten into the canonical layout, the result is
validated against the configuration schema, and pin assignments are checked
for conflicts and against the selected controller board.

Settings are read from ncconf.yaml (or .toml/.json) in the working directory
or $HOME/.config/ncconf, and from NCCONF_* environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default ./ncconf.yaml or $HOME/.config/ncconf/ncconf.yaml)")
	f.String("board", "", "board id or name to check pins against (overrides the document's board field)")
	f.String("boards-file", "", "extra board table (TOML or JSON)")
	f.String("lang", "en", "message language (en, ja)")
	f.String("log-file", "", "write logs to a rotating file instead of stderr")
	f.Bool("color", true, "colorize output when writing to a terminal")
	f.Bool("fail-fast", false, "stop validation at the first issue")

	for key, flag := range map[string]string{
		"board":       "board",
		"boards_file": "boards-file",
		"language":    "lang",
		"log_file":    "log-file",
		"color":       "color",
		"fail_fast":   "fail-fast",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(validateCmd, migrateCmd, pinsCmd, diffCmd, boardsCmd, stepsCmd, presetsCmd, schemaCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := readConfig(); err != nil {
		return err
	}
	logger = newLogger(viper.GetString("log_file"))
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Printf("using config file %s", used)
	}
	i18n.SetLanguage(viper.GetString("language"))
	out = newStyles(viper.GetBool("color") && isTerminal(cmd.OutOrStdout()))

	t, err := loadBoards(viper.GetString("boards_file"))
	if err != nil {
		return err
	}
	boards = t
	return nil
}

func readConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ncconf")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ncconf"))
		}
	}
	viper.SetEnvPrefix("NCCONF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func newLogger(file string) *log.Logger {
	var w io.Writer = os.Stderr
	if file != "" {
		w = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return log.New(w, "[ncconf] ", log.LstdFlags)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// loadBoards returns the built-in table, extended with the descriptors in
// file when set. The format follows the file extension; anything other than
// .json is read as TOML.
func loadBoards(file string) (*board.Table, error) {
	if file == "" {
		return board.Default(), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading boards file: %w", err)
	}
	var ds []board.Descriptor
	if strings.EqualFold(filepath.Ext(file), ".json") {
		ds, err = board.LoadJSON(data)
	} else {
		ds, err = board.LoadTOML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	t, err := board.Default().With(ds...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	logger.Printf("loaded %d boards from %s", len(ds), file)
	return t, nil
}

// importOpt builds the pipeline options shared by every command that runs an
// import. An unknown --board is an error.
func importOpt() (importer.Opt, error) {
	o := importer.Opt{Boards: boards, FailFast: viper.GetBool("fail_fast")}
	if ref := viper.GetString("board"); ref != "" {
		d, ok := boards.Resolve(ref)
		if !ok {
			return o, fmt.Errorf("unknown board %q (known: %s)", ref, strings.Join(boards.IDs(), ", "))
		}
		o.Board = d
	}
	return o, nil
}
