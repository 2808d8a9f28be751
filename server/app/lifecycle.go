package app

import "context"

// Component 可啟動 / 可關閉的長生命週期元件。
//   - Run() 阻塞直到元件停止（正常或錯誤）。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx deadline。
//
// 例如 HTTP server、cron 排程。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
