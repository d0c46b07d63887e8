package main

import (
	"fmt"
	"strconv"

	"github.com/jacobsenj/canto-fal/internal/cache"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the folder and file caches",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush [storage-id...]",
	Short: "Drop cached folders and files, of every storage when none is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		storageIDs := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid storage id %q", arg)
			}
			storageIDs = append(storageIDs, id)
		}
		if len(storageIDs) == 0 {
			for _, cfg := range a.cfg.Drivers {
				storageIDs = append(storageIDs, cfg.StorageID)
			}
		}

		folders, files, err := a.cacheBackends(ctx)
		if err != nil {
			return err
		}
		for _, id := range storageIDs {
			if err := cache.New(folders, files, id, a.cfg.Cache.Lifetime, a.log).Invalidate(ctx); err != nil {
				return fmt.Errorf("flushing storage %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flushed storage %d\n", id)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
}
