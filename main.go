// @title 기출문제 은행 API
// @version 1.0
// @description 기출 시험 페이지를 크롤링하여 저장하고 CBT 채점을 제공하는 백엔드 서버.

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"

	"exam_bank_backend/internal/app"
	"exam_bank_backend/internal/config"
	"exam_bank_backend/pkg/configwatcher"
	"exam_bank_backend/pkg/logger"
)

func main() {
	// 커맨드라인 인자
	migrateOnly := flag.Bool("migrate-only", false, "데이터베이스 마이그레이션만 수행하고 종료")
	migrate := flag.Bool("migrate", false, "시작 시 마이그레이션 강제 수행")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("데이터베이스 마이그레이션 완료, 프로그램 종료")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", application.OnConfigReload)

	application.Run()
}
