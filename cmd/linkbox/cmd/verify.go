package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkbox/internal/app"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
)

var (
	verifyRepair bool
	verifyJSON   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that folder membership lists match link folders",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "Fix any drift found")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Output as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	return withBackend(cmd.Context(), func(b *app.Backend) error {
		check := b.Service.Verify
		if verifyRepair {
			check = b.Service.Repair
		}
		report, err := check(cmd.Context())
		if err != nil {
			return err
		}
		if verifyJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatReport(report, verifyRepair))
		return nil
	})
}

func formatReport(r repository.Report, repaired bool) string {
	if r.Consistent() {
		return "✓ membership consistent\n"
	}
	var s string
	for _, f := range r.Folders {
		s += fmt.Sprintf("folder %s: %d missing, %d stale\n", f.FolderID, len(f.Missing), len(f.Stale))
	}
	for _, id := range r.Orphans {
		s += fmt.Sprintf("link %s: folder does not exist\n", id)
	}
	if repaired {
		s += "repaired\n"
	}
	return s
}
