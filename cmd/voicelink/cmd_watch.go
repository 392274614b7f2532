package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"voicelink/internal/shortcut"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the snapshot whenever the local store changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ls, err := openStore()
		if err != nil {
			return err
		}
		defer ls.Close()

		reg := newRegistry(ls)
		if err := reg.ReloadAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("watching %s (%d shortcuts), ctrl-c to stop\n", ls.Path(), reg.Count())

		w, err := shortcut.NewWatcher(reg, ls.Path(), logger)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
