// Package main 提供一次性的画像向量回填命令。
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"talent-match-go/internal/config"
	"talent-match-go/internal/metrics"
	"talent-match-go/internal/repository"
	"talent-match-go/internal/service"
	"talent-match-go/pkg/database"
	"talent-match-go/pkg/embedding"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/log"
)

var (
	cfgFile string
	userID  uint

	rootCmd = &cobra.Command{
		Use:   "sync-embeddings",
		Short: "为缺少向量的人才画像生成 embedding",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "./configs/config.yaml", "配置文件路径")
	rootCmd.Flags().UintVar(&userID, "user-id", 0, "只重建指定用户的向量，0 表示补全所有缺失的向量")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	config.Init(cfgFile)
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	metrics.Register()

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.AutoMigrate(database.DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	invoker := invoke.NewClient(invoke.Options{
		Gate:        invoke.NewIntervalGate(cfg.Invocation.MinInterval()),
		RetryDelays: cfg.Invocation.RetryDelays(),
	})
	syncer := service.NewEmbeddingSyncService(
		repository.NewUserRepository(database.DB),
		repository.NewEmbeddingRepository(database.DB),
		embedding.NewClient(cfg.Embedding, invoker),
		cfg.Embedding.Model,
		cfg.Matching.SyncPacing(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if userID != 0 {
		if err := syncer.EnsureEmbedding(ctx, userID); err != nil {
			return fmt.Errorf("重建用户 %d 的向量失败: %w", userID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "用户 %d 的向量已更新\n", userID)
		return nil
	}

	synced := syncer.SyncAllMissing(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "已同步 %d 个画像向量\n", synced)
	return nil
}
