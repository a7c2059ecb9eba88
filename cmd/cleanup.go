package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "清理超过保留天数的操作日志",
		Long:  "删除早于指定天数的操作日志；启用 archive 时先把日志以 JSON Lines 写入对象存储。",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *deps) error {
				olderThan, err := retentionAge(days, &d.Config.Activity)
				if err != nil {
					return err
				}

				result, err := d.Retention.Cleanup(cmd.Context(), olderThan)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "cutoff:   %s\n", result.Cutoff.Format(time.RFC3339))
				fmt.Fprintf(out, "archived: %d\n", result.Archived)
				fmt.Fprintf(out, "deleted:  %d\n", result.Deleted)
				for _, key := range result.ArchiveKeys {
					fmt.Fprintf(out, "  %s\n", key)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "保留天数，默认使用 activity.retention_days")
	return cmd
}

// retentionAge --days 优先，未指定时使用 activity.retention_days
func retentionAge(days int, cfg *config.ActivityConfig) (time.Duration, error) {
	if days > 0 {
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if age := cfg.GetRetention(); age > 0 {
		return age, nil
	}
	return 0, errors.New("未指定 --days 且 activity.retention_days 为 0")
}
