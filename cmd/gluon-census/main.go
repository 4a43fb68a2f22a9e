// Package main is the entry point for the gluon census exporter.
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/freifunk/gluon-census/cmd/gluon-census/app"
	"github.com/freifunk/gluon-census/internal/logger"
)

func main() {
	// Replaced once the configuration is loaded. Logs go to stderr so
	// stdout stays clean for command output.
	if l, err := logger.New("", logger.FormatAuto); err == nil {
		logger.Initialize(l)
	}
	defer func() {
		_ = zap.L().Sync()
	}()

	if err := app.NewRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
