package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	configPath string
	appEnv     string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "bluemoon",
		Short:         "BlueMoon 公寓管理后端",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs", "配置文件或目录")
	rootCmd.PersistentFlags().StringVarP(&appEnv, "env", "e", "", "运行环境 dev/test/prod，默认读取 BLUEMOON_APP_ENV")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCleanupCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
