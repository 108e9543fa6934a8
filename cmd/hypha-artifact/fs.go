package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact"
)

func glyph(e artifact.Entry) string {
	if e.IsDir() {
		return "📁"
	}
	return "📄"
}

func newLsCmd() *cobra.Command {
	var (
		stage    bool
		version  string
		noDetail bool
	)
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List directory contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			entries, err := client.Ls(cmd.Context(), path, &artifact.LsOptions{Stage: stage, Version: version})
			if err != nil {
				return err
			}
			for _, e := range entries {
				if noDetail {
					fmt.Println(e.Name)
				} else {
					fmt.Printf("%s %10d  %s\n", glyph(e), e.Size, e.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "list the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "list a specific committed version")
	cmd.Flags().BoolVar(&noDetail, "no-detail", false, "show names only")
	return cmd
}

func newCatCmd() *cobra.Command {
	var (
		stage     bool
		version   string
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "cat <path>...",
		Short: "Print file contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			opts := &artifact.CatOptions{Stage: stage, Version: version, Recursive: recursive}
			if len(args) == 1 && !recursive {
				data, err := client.Cat(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}
			contents, err := client.CatMany(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			paths := make([]string, 0, len(contents))
			for p := range contents {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Printf("==> %s <==\n", p)
				os.Stdout.Write(contents[p])
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recursively cat directory contents")
	cmd.Flags().BoolVar(&stage, "stage", false, "read from the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "read from a specific committed version")
	return cmd
}

func newHeadCmd() *cobra.Command {
	var (
		n       int64
		stage   bool
		version string
	)
	cmd := &cobra.Command{
		Use:   "head <path>",
		Short: "Print the first bytes of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			data, err := client.Head(cmd.Context(), args[0], n, &artifact.CatOptions{Stage: stage, Version: version})
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().Int64VarP(&n, "bytes", "n", artifact.DefaultHeadSize, "number of bytes to print")
	cmd.Flags().BoolVar(&stage, "stage", false, "read from the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "read from a specific committed version")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var (
		stage   bool
		version string
	)
	cmd := &cobra.Command{
		Use:   "info <path>...",
		Short: "Show metadata for one or more paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			infos, err := client.InfoMany(cmd.Context(), args, &artifact.LsOptions{Stage: stage, Version: version})
			if err != nil {
				return err
			}
			for _, p := range args {
				e := infos[p]
				fmt.Printf("%s %s  type=%s size=%d\n", glyph(e), e.Path, e.Type, e.Size)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "inspect the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "inspect a specific committed version")
	return cmd
}

func newExistsCmd() *cobra.Command {
	var stage bool
	cmd := &cobra.Command{
		Use:   "exists <path>...",
		Short: "Check whether paths exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			result, err := client.ExistsMany(cmd.Context(), args, &artifact.LsOptions{Stage: stage})
			if err != nil {
				return err
			}
			missing := false
			for _, p := range args {
				if result[p] {
					fmt.Printf("✅ %s\n", p)
				} else {
					fmt.Printf("❌ %s\n", p)
					missing = true
				}
			}
			if missing {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "check the staged tree")
	return cmd
}

func newSizeCmd() *cobra.Command {
	var (
		stage   bool
		version string
	)
	cmd := &cobra.Command{
		Use:   "size <path>...",
		Short: "Show file sizes in bytes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			sizes, err := client.Sizes(cmd.Context(), args, &artifact.LsOptions{Stage: stage, Version: version})
			if err != nil {
				return err
			}
			for _, p := range args {
				fmt.Printf("%12d  %s\n", sizes[p], p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "measure the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "measure a specific committed version")
	return cmd
}

func newFindCmd() *cobra.Command {
	var (
		maxDepth int
		withDirs bool
		detail   bool
		stage    bool
		version  string
	)
	cmd := &cobra.Command{
		Use:   "find [path]",
		Short: "List all files under a path recursively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			entries, err := client.Find(cmd.Context(), path, &artifact.FindOptions{
				MaxDepth: maxDepth,
				WithDirs: withDirs,
				Stage:    stage,
				Version:  version,
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				if detail {
					fmt.Printf("%s %-10s %10d  %s\n", glyph(e), e.Type, e.Size, e.Path)
				} else {
					fmt.Printf("%s %s\n", glyph(e), e.Path)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "maxdepth", 0, "limit recursion depth (0 = unlimited)")
	cmd.Flags().BoolVar(&withDirs, "include-dirs", false, "include directories in the output")
	cmd.Flags().BoolVar(&detail, "detail", false, "show type and size")
	cmd.Flags().BoolVar(&stage, "stage", false, "search the staged tree")
	cmd.Flags().StringVar(&version, "version", "", "search a specific committed version")
	return cmd
}

func newMkdirCmd() *cobra.Command {
	var parents bool
	cmd := &cobra.Command{
		Use:   "mkdir <path>...",
		Short: "Create directories in the staged tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := client.Mkdir(cmd.Context(), path, parents); err != nil {
					return err
				}
				fmt.Printf("✅ created %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", true, "create missing parent directories")
	return cmd
}

func newRmCmd() *cobra.Command {
	var (
		recursive bool
		maxDepth  int
	)
	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files or directories from the staged tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			for _, path := range args {
				err := client.Remove(cmd.Context(), path, &artifact.RemoveOptions{
					Recursive: recursive,
					MaxDepth:  maxDepth,
				})
				if err != nil {
					return err
				}
				fmt.Printf("✅ removed %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	cmd.Flags().IntVar(&maxDepth, "maxdepth", 0, "limit recursion depth (0 = unlimited)")
	return cmd
}

func newCpCmd() *cobra.Command {
	var (
		recursive bool
		maxDepth  int
		version   string
	)
	cmd := &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy files within the artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			err = client.Copy(cmd.Context(), args[0], args[1], &artifact.CopyOptions{
				Recursive: recursive,
				MaxDepth:  maxDepth,
				Version:   version,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✅ copied %s to %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "copy directories recursively")
	cmd.Flags().IntVar(&maxDepth, "maxdepth", 0, "limit recursion depth (0 = unlimited)")
	cmd.Flags().StringVar(&version, "version", "", "copy from a specific committed version")
	return cmd
}
