// Package cli wires the commands into a cobra command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mp3tool/internal/commands"
	"mp3tool/internal/config"
)

const envPrefix = "MP3TOOL"

// Version is reported by --version.
var Version = "0.1.0"

type app struct {
	out     io.Writer
	logger  *logrus.Logger
	v       *viper.Viper
	handler *commands.Handler
}

// NewRootCommand builds the mp3tool command tree. Command output goes to out
// and diagnostics to logger.
func NewRootCommand(out io.Writer, logger *logrus.Logger) *cobra.Command {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	a := &app{
		out:     out,
		logger:  logger,
		v:       viper.New(),
		handler: commands.New(out, logger),
	}

	root := &cobra.Command{
		Use:   "mp3tool",
		Short: "Merge MP3 files and read or edit their tags",
		Long: `mp3tool concatenates MP3 files and reads or edits their ID3 tags.

Examples:
  mp3tool merge intro.mp3 part1.mp3 part2.mp3 episode.mp3
  mp3tool read-tags episode.mp3
  mp3tool read-tags --watch episode.mp3
  mp3tool edit-tags episode.mp3 tags.json`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("config", "", "settings file (default is ./"+config.DefaultSettingsFile+", env "+envPrefix+"_CONFIG)")
	flags.BoolP("verbose", "v", false, "verbose output")

	a.v.SetEnvPrefix(envPrefix)
	_ = a.v.BindEnv("config")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(
		a.mergeCommand(),
		a.readTagsCommand(),
		a.editTagsCommand(),
	)
	return root
}

func (a *app) initialize(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()

	if a.v.GetBool("verbose") {
		a.logger.SetLevel(logrus.DebugLevel)
	} else {
		a.logger.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func (a *app) settings() (config.Settings, error) {
	path, err := config.ResolveSettingsPath(a.v.GetString("config"))
	if err != nil {
		return config.Settings{}, fmt.Errorf("resolve settings path: %w", err)
	}
	a.logger.WithField("path", path).Debug("loading settings")

	settings, err := config.Load(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (a *app) mergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <files...> <output>",
		Short: "Concatenate MP3 files into one",
		Long: `Concatenate the MP3 files among <files...>, in order, into <output>.
Arguments not ending in .mp3 are skipped. When <output> does not end in .mp3
the result is written to output.mp3 instead.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, output := args[:len(args)-1], args[len(args)-1]
			_, err := a.handler.Merge(inputs, output)
			return err
		},
	}
}

func (a *app) readTagsCommand() *cobra.Command {
	var watchFile bool

	cmd := &cobra.Command{
		Use:   "read-tags <file>",
		Short: "Print the configured tags of an MP3 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings()
			if err != nil {
				return err
			}
			if !watchFile {
				return a.handler.ReadTags(settings, args[0])
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.handler.WatchTags(ctx, settings, args[0])
		},
	}
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "print the table again whenever the file changes")
	return cmd
}

func (a *app) editTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit-tags <file> <json_file>",
		Short: "Set tags of an MP3 file from a JSON document",
		Long: `Set tags of <file> from the JSON object in <json_file>. Keys are tag
names; the artwork key takes the path of an image file. Unknown and read-only
keys are reported and skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.handler.EditTags(args[0], args[1])
			return err
		},
	}
}
