package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultConfig().Server.Listen, "address to listen on")

	bindServeFlags()
}

// bindServeFlags lets --listen override server.listen. The flag default
// equals the config default, so an unset flag never blanks the address.
func bindServeFlags() {
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	logger.Info("starting the interview-prep server", zap.String("version", version))

	rt, err := newRuntime(ctx, logger)
	if err != nil {
		logger.Fatal("preparing analysis", zap.Error(err))
	}
	defer rt.Close()

	srv := server.New(rt.session, server.Options{SessionTTL: rt.config.Server.SessionTTL}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("shutting down the server", zap.String("signal", sig.String()))
		if err := srv.Shutdown(); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	if err := srv.Listen(rt.config.Server.Listen); err != nil {
		logger.Error("serving http", zap.Error(err))
	}
}
