// Command hypha-artifact is a CLI for Hypha artifact storage: listing,
// reading, writing and transferring files inside a remote artifact, plus the
// staging lifecycle that gates every mutation.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aicell-lab/hypha-artifact-go/internal/config"
	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact"
)

var (
	flagServerURL  string
	flagToken      string
	flagWorkspace  string
	flagArtifactID string
	flagLogLevel   string

	log zerolog.Logger
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hypha-artifact",
		Short: "Work with files stored in a Hypha artifact",
		Long: "hypha-artifact provides filesystem-style access to a remote Hypha\n" +
			"artifact: list, read and transfer files, and manage the staging\n" +
			"lifecycle (edit --stage, commit, discard) that every write goes through.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A local .env is a convenience, not a requirement.
			_ = godotenv.Load()
			return setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagServerURL, "server-url", "", "Hypha server URL (defaults to HYPHA_SERVER_URL)")
	pf.StringVar(&flagToken, "token", "", "access token (defaults to HYPHA_TOKEN)")
	pf.StringVar(&flagWorkspace, "workspace", "", "workspace (defaults to HYPHA_WORKSPACE)")
	pf.StringVar(&flagArtifactID, "artifact-id", "", "artifact id, as workspace/alias or bare alias")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newLsCmd(),
		newCatCmd(),
		newHeadCmd(),
		newInfoCmd(),
		newExistsCmd(),
		newSizeCmd(),
		newFindCmd(),
		newMkdirCmd(),
		newRmCmd(),
		newCpCmd(),
		newEditCmd(),
		newCommitCmd(),
		newDiscardCmd(),
		newCreateCmd(),
		newDeleteArtifactCmd(),
		newUploadCmd(),
		newDownloadCmd(),
	)
	return root
}

func setupLogging() error {
	level := flagLogLevel
	if level == "" {
		level = os.Getenv("HYPHA_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(parsed).
		With().Timestamp().Logger()
	return nil
}

// newClient merges flags over environment configuration and connects.
func newClient() (*artifact.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagServerURL != "" {
		cfg.ServerURL = strings.TrimRight(flagServerURL, "/")
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}
	if flagWorkspace != "" {
		cfg.Workspace = flagWorkspace
	}
	if cfg.ServerURL == "" {
		return nil, errors.New("no server URL: pass --server-url or set HYPHA_SERVER_URL")
	}
	if flagArtifactID == "" {
		return nil, errors.New("no artifact: pass --artifact-id")
	}

	opts := []artifact.Option{
		artifact.WithToken(cfg.Token),
		artifact.WithTimeout(cfg.HTTPTimeout),
		artifact.WithClientID(cfg.ClientID),
		artifact.WithLogger(log),
		artifact.WithMultipart(artifact.MultipartConfig{
			Threshold:   cfg.MultipartThreshold,
			ChunkSize:   cfg.ChunkSize,
			MaxParallel: cfg.MaxParallelUploads,
		}),
	}
	if cfg.Workspace != "" {
		opts = append(opts, artifact.WithWorkspace(cfg.Workspace))
	}
	return artifact.New(cfg.ServerURL, flagArtifactID, opts...)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	switch {
	case errors.Is(err, artifact.ErrStagingRequired):
		fmt.Fprintln(os.Stderr, "💡 writes require an open stage: run 'hypha-artifact edit --stage' first")
	case errors.Is(err, artifact.ErrNothingToCommit):
		fmt.Fprintln(os.Stderr, "💡 nothing is staged: run 'hypha-artifact edit --stage' and make changes first")
	case errors.Is(err, artifact.ErrStagingConflict):
		fmt.Fprintln(os.Stderr, "💡 another session holds the stage: commit or discard it first")
	}
}

// progressPrinter renders transfer events with the same glyphs the rest of
// the CLI uses.
func progressPrinter(ev artifact.ProgressEvent) {
	switch ev.Type {
	case artifact.ProgressSuccess:
		fmt.Printf("✅ %s\n", ev.Message)
	case artifact.ProgressError:
		fmt.Printf("❌ %s\n", ev.Message)
	case artifact.ProgressWarning:
		fmt.Printf("⚠️  %s\n", ev.Message)
	default:
		fmt.Printf("%s\n", ev.Message)
	}
}
