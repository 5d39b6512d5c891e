package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

var (
	validateTaxonomy   string
	validateRegulation string
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateTaxonomy, "taxonomy", "./data/taxonomy", "Path to taxonomy directory")
	validateCmd.Flags().StringVar(&validateRegulation, "regulations", "./data/regulations", "Path to regulation directory")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate taxonomy and regulation data without starting a server",
	Long:  "Loads the taxonomy and regulation directories the same way serve does, reporting load/schema errors without binding a port or calling Bedrock.",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	tax, err := taxonomy.Load(validateTaxonomy)
	if err != nil {
		return fmt.Errorf("taxonomy: %w", err)
	}
	fmt.Printf("taxonomy OK: %d canonical keys\n", len(tax.AllowedKeys()))

	rules, err := regulation.LoadDirectory(validateRegulation)
	if err != nil {
		return fmt.Errorf("regulations: %w", err)
	}
	fmt.Printf("regulations OK: %d rules loaded from %s\n", len(rules), validateRegulation)

	return nil
}
