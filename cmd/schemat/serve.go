package main

import (
	"net"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// newServeCmd starts the HTTP listener over the assembled installation's
// Dispatcher, the way the teacher's cmd/apiserver/apiserver.go calls
// m.Run(address, apiPrefix) after wiring its master.
func newServeCmd(configDir *string) *cobra.Command {
	var addr string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server over the configured installation",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := boot(*configDir)
			if err != nil {
				return err
			}
			defer in.Close()

			go in.registry.RunEvictionLoop(cmd.Context(), in.cfg.Registry.ParsedEvictionInterval)

			listenAddr := net.JoinHostPort(addr, strconv.Itoa(port))
			glog.Infof("schemat: serving on %s", listenAddr)
			return http.ListenAndServe(listenAddr, in.dispatch.NewHTTPHandler())
		},
	}
	cmd.Flags().StringVar(&addr, "address", "127.0.0.1", "address to listen on")
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	return cmd
}
