// Command schemat is the process entrypoint for a Schemat Object Core
// installation: it loads the boot configuration, wires the Record Store,
// Object Registry, Module Loader and routing Tree together, and exposes
// subcommands for running the HTTP server, loading a single module, and
// inspecting a stored object. Modeled on the teacher's
// cmd/apiserver/apiserver.go (flag.Parse + glog.Fatal on setup failure)
// combined with andyballingall-json-schema-manager/cmd/jsm's
// signal-aware context and cobra command tree.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer glog.Flush()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		glog.Errorf("schemat: %v", err)
		os.Exit(1)
	}
}
