// @title Quiz ICC 后端 API
// @version 1.0
// @description 测验平台的后端服务：Google 登录、答题、历史与排行榜。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in header
// @name Cookie

package main

import (
	"flag"
	"log"
	"quiz_icc_backend/internal/app"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
