package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"visit_tracker/internal/cli"
	"visit_tracker/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Keep stdout clean for json/yaml output
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	open := func() (*gorm.DB, error) {
		return config.OpenDB(config.Load())
	}

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
