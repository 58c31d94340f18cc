package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "fetches both datasets and stores a new snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, db, err := a.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			info, err := svc.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dataset %s: %d segments (%d rejected), %d stations\n",
				info.ID, info.SegmentCount, info.Rejected, info.StationCount)
			return nil
		},
	}
}
