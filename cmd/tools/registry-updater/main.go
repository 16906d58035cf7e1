// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"bme-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:           "registry-updater",
	Short:         "Maintain the activity registry for worker-manager job types",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the current worker definitions into the registry",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")
	rootCmd.AddCommand(syncCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadOrCreate(registryPath)
	if err != nil {
		return err
	}

	changed := 0
	for _, a := range activities() {
		if reg.Upsert(a) {
			changed++
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", a.ID)
		}
	}
	if changed == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "registry already up to date")
		return nil
	}

	return registry.Save(reg, registryPath, time.Now())
}

func runValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}
