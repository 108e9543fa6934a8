package main

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact"
)

func parseOnError(raw string) (artifact.OnError, error) {
	switch raw {
	case "", "raise":
		return artifact.OnErrorRaise, nil
	case "ignore":
		return artifact.OnErrorIgnore, nil
	default:
		return "", fmt.Errorf("invalid --on-error value %q (want raise or ignore)", raw)
	}
}

func newUploadCmd() *cobra.Command {
	var (
		noRecursive     bool
		maxDepth        int
		onError         string
		enableMultipart bool
		threshold       int64
		chunkSize       int64
		maxParallel     int
		quiet           bool
	)
	cmd := &cobra.Command{
		Use:   "upload <local-path> [remote-path]",
		Short: "Upload a local file or directory into the staged tree",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			remote := "/" + filepath.Base(args[0])
			if len(args) == 2 {
				remote = args[1]
			}
			policy, err := parseOnError(onError)
			if err != nil {
				return err
			}
			opts := &artifact.TransferOptions{
				Recursive: !noRecursive,
				MaxDepth:  maxDepth,
				OnError:   policy,
			}
			if !quiet {
				opts.Progress = progressPrinter
			}
			if enableMultipart || threshold > 0 || chunkSize > 0 || maxParallel > 0 {
				opts.Multipart = &artifact.MultipartConfig{
					Enabled:     enableMultipart,
					Threshold:   threshold,
					ChunkSize:   chunkSize,
					MaxParallel: maxParallel,
				}
			}
			return client.Upload(cmd.Context(), args[0], remote, opts)
		},
	}
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "refuse to upload directories")
	cmd.Flags().IntVar(&maxDepth, "maxdepth", 0, "limit directory recursion (0 = unlimited)")
	cmd.Flags().StringVar(&onError, "on-error", "raise", "per-file failure policy: raise or ignore")
	cmd.Flags().BoolVar(&enableMultipart, "enable-multipart", false, "force multipart regardless of size")
	cmd.Flags().Int64Var(&threshold, "multipart-threshold", 0, "size in bytes above which multipart kicks in")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "multipart part size in bytes (min 5 MiB)")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", 0, "concurrent part uploads")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

func newDownloadCmd() *cobra.Command {
	var (
		noRecursive bool
		maxDepth    int
		onError     string
		stage       bool
		version     string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "download <remote-path> [local-path]",
		Short: "Download a remote file or directory to the local filesystem",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			local := path.Base(args[0])
			if len(args) == 2 {
				local = args[1]
			}
			policy, err := parseOnError(onError)
			if err != nil {
				return err
			}
			opts := &artifact.TransferOptions{
				Recursive: !noRecursive,
				MaxDepth:  maxDepth,
				OnError:   policy,
				Stage:     stage,
				Version:   version,
			}
			if !quiet {
				opts.Progress = progressPrinter
			}
			return client.Download(cmd.Context(), args[0], local, opts)
		},
	}
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "refuse to download directories")
	cmd.Flags().IntVar(&maxDepth, "maxdepth", 0, "limit directory recursion (0 = unlimited)")
	cmd.Flags().StringVar(&onError, "on-error", "raise", "per-file failure policy: raise or ignore")
	cmd.Flags().BoolVar(&stage, "stage", false, "download from the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "download from a specific committed version")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}
