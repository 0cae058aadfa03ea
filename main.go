package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/kvset/cmd"
	"github.com/oakwood-commons/kvset/pkg/logger"
)

// main runs the root command and flushes buffered log entries before the
// process exits. The root command silences cobra's own error printing, so
// the single report to stderr happens here.
func main() {
	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
