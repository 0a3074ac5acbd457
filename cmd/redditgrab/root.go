package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"redditgrab/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	noColor    bool
	notify     bool
	verbose    bool
)

// rootCmd downloads a subreddit when called with its two positional arguments
var rootCmd = &cobra.Command{
	Use:   "redditgrab <subreddit> <destDir>",
	Short: "Download the images and videos posted to a subreddit",
	Long: `redditgrab walks the newest posts of a subreddit and saves the media they link to.

Links to imgur (single images and albums), DeviantArt pages, gfycat and
imgrush/mediacru.sh are resolved to the files behind them. Any other link
is downloaded as is when it points at an image or a video.

Files are named "<post id> - <title>.<ext>" and a file that already exists
is never downloaded again, so a run can be repeated to catch up.`,
	Example: `  # Download everything from r/earthporn into ./earthporn
  redditgrab earthporn ./earthporn

  # Only posts with a score of 100 or more, stop after 50 files
  redditgrab earthporn ./earthporn -score 100 -num 50

  # Catch up with new posts and stop at the first file already on disk
  redditgrab earthporn ./earthporn -update

  # Continue after a given post, keeping only titles starting with "OC"
  redditgrab earthporn ./earthporn -last 6x1abc -regex 'OC'`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColor(false)
		}
	},
	RunE: runDownload,
}

// Execute runs the root command with single-dash long flags rewritten
func Execute() {
	rootCmd.SetArgs(normalizeArgs(rootCmd, os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .redditgrab.yaml or $HOME/.redditgrab.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "run log file (default logs/reddit_update.log)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().String("last", "", "ID of the last downloaded post")
	rootCmd.Flags().Int("score", 0, "minimum score of posts to download")
	rootCmd.Flags().Int("num", 0, "number of files to download (0 for no limit)")
	rootCmd.Flags().Bool("update", false, "stop at the first file already downloaded")
	rootCmd.Flags().Bool("sfw", false, "download safe for work posts only")
	rootCmd.Flags().Bool("nsfw", false, "download NSFW posts only")
	rootCmd.Flags().String("regex", "", "only download posts whose title starts with a match")
	rootCmd.Flags().Duration("delay", 0, "pause after each download (default 2s)")
	rootCmd.Flags().Int("workers", 0, "resolve the links of a page with this many workers (default 1)")
	rootCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print skipped posts and log at debug level")

	rootCmd.SetVersionTemplate(`redditgrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// normalizeArgs rewrites "-name" and "-name=value" to their double dash form
// when name is a long flag of cmd, so the classic single dash spelling works.
// Arguments after "--" are left alone.
func normalizeArgs(cmd *cobra.Command, args []string) []string {
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()

	known := make(map[string]bool)
	collect := func(f *pflag.Flag) { known[f.Name] = true }
	cmd.Flags().VisitAll(collect)
	cmd.PersistentFlags().VisitAll(collect)
	for _, sub := range cmd.Commands() {
		sub.Flags().VisitAll(collect)
	}

	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			name, _, _ := strings.Cut(arg[1:], "=")
			if len(name) > 1 && known[name] {
				arg = "-" + arg
			}
		}
		out = append(out, arg)
	}
	return out
}

// changedFlags returns the values of the flags set on the command line,
// keyed by flag name as config.MergeCommandLineFlags expects
func changedFlags(fs *pflag.FlagSet) map[string]interface{} {
	flags := make(map[string]interface{})
	fs.Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "string":
			v, _ := fs.GetString(f.Name)
			flags[f.Name] = v
		case "int":
			v, _ := fs.GetInt(f.Name)
			flags[f.Name] = v
		case "bool":
			v, _ := fs.GetBool(f.Name)
			flags[f.Name] = v
		case "duration":
			v, _ := fs.GetDuration(f.Name)
			flags[f.Name] = v
		}
	})
	return flags
}
