package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	manimarkcmd "manimark/internal/cli/cmd"
	"manimark/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := manimarkcmd.Execute(ctx)
	if err == nil {
		return
	}
	code := manimarkcmd.ExitFailure
	var ee *manimarkcmd.ExitError
	if errors.As(err, &ee) {
		code = ee.Code
		err = ee.Err
	}
	if err != nil {
		logging.Default(false).Error("%v", err)
	}
	stop()
	os.Exit(code)
}
