package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/assets"
	"github.com/pdfstruct/pdfstruct/pkg/parser"
)

// modelsCommand creates the models command with ensure, verify, and path
// subcommands for managing OCR model assets.
func (c *CLI) modelsCommand() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage OCR model assets",
		Long: `Manage OCR model assets.

Model files are downloaded into the model directory on first use. The
directory defaults to <cache>/models and can be overridden with
PDFSTRUCT_MODEL_DIR.

Examples:
  pdfstruct models ensure                      # Download missing models
  pdfstruct models ensure --manifest m.toml    # Custom manifest
  pdfstruct models verify                      # Check digests on disk
  pdfstruct models path                        # Print the model directory`,
	}

	cmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "custom asset manifest file (TOML)")

	cmd.AddCommand(c.modelsEnsureCommand(&manifestPath))
	cmd.AddCommand(c.modelsVerifyCommand(&manifestPath))
	cmd.AddCommand(c.modelsPathCommand())

	return cmd
}

func (c *CLI) modelsEnsureCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Download any missing model assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			prov, err := newProvisioner(*manifestPath)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Provisioning model assets...")
			spinner.Start()
			statuses, err := prov.Ensure(ctx)
			if err != nil {
				spinner.StopWithError("Model provisioning failed")
				return err
			}
			spinner.Stop()

			downloaded := 0
			for _, s := range statuses {
				if s.Downloaded {
					downloaded++
					printFile(s.Path)
				}
			}
			if downloaded == 0 {
				printSuccess("All %d model assets already present", len(statuses))
			} else {
				printSuccess("Downloaded %d of %d model assets", downloaded, len(statuses))
			}
			printDetail("Languages: %s", strings.Join(prov.Manifest().Languages(), ", "))
			return nil
		},
	}
}

func (c *CLI) modelsVerifyCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify model assets on disk against their digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			prov, err := newProvisioner(*manifestPath)
			if err != nil {
				return err
			}
			if err := prov.Verify(ctx); err != nil {
				return err
			}
			printSuccess("All model assets verified")
			return nil
		},
	}
}

func (c *CLI) modelsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the model directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := modelDir()
			if err != nil {
				return err
			}
			cmd.Println(dir)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printDetail("(not created yet, run 'pdfstruct models ensure')")
			}
			return nil
		},
	}
}

// newProvisioner builds a provisioner for the model directory, loading a
// custom manifest when a path is given.
func newProvisioner(manifestPath string) (*assets.Provisioner, error) {
	manifest := assets.DefaultManifest()
	if manifestPath != "" {
		var err error
		manifest, err = assets.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
	}
	dir, err := modelDir()
	if err != nil {
		return nil, err
	}
	return assets.NewProvisioner(dir, manifest, nil), nil
}

// registerModelDir points the default OCR engine at the provisioned model
// directory. Engines that do not load models from disk are left alone.
func registerModelDir(dir string) {
	if e, ok := parser.DefaultEngine().(interface{ SetModelDir(string) }); ok {
		e.SetModelDir(dir)
	}
}
