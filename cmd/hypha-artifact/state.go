package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aicell-lab/hypha-artifact-go/pkg/artifact"
)

// loadStructuredFile reads a YAML or JSON document into a generic map. YAML
// is a superset of JSON, so one decoder covers both.
func loadStructuredFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func newEditCmd() *cobra.Command {
	var (
		stage        bool
		manifestPath string
		configPath   string
		version      string
		comment      string
		artifactType string
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update artifact metadata or open a stage",
		Long: "edit updates the artifact manifest and configuration. With --stage it\n" +
			"opens the staging area so files can be written; finish with commit or\n" +
			"discard.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			req := artifact.EditRequest{
				Stage:   stage,
				Version: version,
				Comment: comment,
				Type:    artifactType,
			}
			if manifestPath != "" {
				if req.Manifest, err = loadStructuredFile(manifestPath); err != nil {
					return err
				}
			}
			if configPath != "" {
				if req.Config, err = loadStructuredFile(configPath); err != nil {
					return err
				}
			}
			if err := client.Edit(cmd.Context(), req); err != nil {
				return err
			}
			if stage {
				fmt.Println("✅ staging mode opened")
			} else {
				fmt.Println("✅ artifact updated")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "open the staging area")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML or JSON file with the new manifest")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML or JSON file with the new config")
	cmd.Flags().StringVar(&version, "version", "", "version to edit")
	cmd.Flags().StringVar(&comment, "comment", "", "comment recorded with the edit")
	cmd.Flags().StringVar(&artifactType, "type", "", "artifact type")
	return cmd
}

func newCommitCmd() *cobra.Command {
	var (
		version string
		comment string
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Promote staged changes into a new committed version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.Commit(cmd.Context(), version, comment); err != nil {
				return err
			}
			fmt.Println("✅ staged changes committed")
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "name for the new version (server picks one if empty)")
	cmd.Flags().StringVar(&comment, "comment", "", "comment recorded with the commit")
	return cmd
}

func newDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop all staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.Discard(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✅ staged changes discarded")
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var (
		manifestPath string
		artifactType string
		stage        bool
		overwrite    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the artifact on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			req := artifact.CreateRequest{
				Type:      artifactType,
				Stage:     stage,
				Overwrite: overwrite,
			}
			if manifestPath != "" {
				if req.Manifest, err = loadStructuredFile(manifestPath); err != nil {
					return err
				}
			}
			if err := client.Create(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Printf("✅ created %s\n", client.ArtifactID())
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "YAML or JSON file with the initial manifest")
	cmd.Flags().StringVar(&artifactType, "type", "", "artifact type")
	cmd.Flags().BoolVar(&stage, "stage", false, "create with the staging area already open")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing artifact with the same alias")
	return cmd
}

func newDeleteArtifactCmd() *cobra.Command {
	var (
		deleteFiles bool
		recursive   bool
		version     string
		yes         bool
	)
	cmd := &cobra.Command{
		Use:   "delete-artifact",
		Short: "Delete the artifact itself",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", client.ArtifactID())
			}
			err = client.DeleteArtifact(cmd.Context(), artifact.DeleteRequest{
				DeleteFiles: deleteFiles,
				Recursive:   recursive,
				Version:     version,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✅ deleted %s\n", client.ArtifactID())
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteFiles, "delete-files", false, "also delete stored files")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "also delete child artifacts")
	cmd.Flags().StringVar(&version, "version", "", "delete only a specific version")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
