// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app 管理服務內長期運行的元件：統一啟動，收到信號或任一元件結束時統一關閉。
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 關閉階段的總時限
const DefaultShutdownTimeout = 5 * time.Second

// App 生命週期管理器。
//
// 關閉順序：先依註冊順序 Shutdown 所有 Component，再依註冊的反序執行 OnStop hook
// （例如停止所有會話、flush log）。
type App struct {
	comps   []Component
	hooks   []func(context.Context) error
	timeout time.Duration
	log     *slog.Logger
}

func New() *App {
	return &App{
		timeout: DefaultShutdownTimeout,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewWith 建立時直接註冊多個 Component
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnStop 註冊關閉 hook
func (a *App) OnStop(fn func(context.Context) error) {
	a.hooks = append(a.hooks, fn)
}

func (a *App) SetLogger(l *slog.Logger) {
	if l != nil {
		a.log = l
	}
}

func (a *App) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		a.timeout = d
	}
}

// Run 阻塞直到收到 SIGINT/SIGTERM 或任一 Component.Run 返回
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 同 Run，但以 ctx 取消代替 OS 信號。
//
// ctx 取消視為正常結束回傳 nil；Component 先結束時回傳其錯誤（nil 亦同）。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			a.log.Error("component stopped", slog.Any("err", runErr))
		}
	}
	if err := a.shutdown(); err != nil {
		a.log.Error("graceful shutdown", slog.Any("err", err))
	}
	return runErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	var all []error
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			all = append(all, err)
		}
	}
	for i := len(a.hooks) - 1; i >= 0; i-- {
		if err := a.hooks[i](ctx); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
