package main

import (
	"fmt"
	"strconv"

	"github.com/jacobsenj/canto-fal/internal/dam"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <storage-id>",
	Short: "Print the folder tree of a storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storageID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid storage id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		drivers, err := a.factory(ctx)
		if err != nil {
			return err
		}
		d, err := drivers.Open(ctx, storageID)
		if err != nil {
			return err
		}
		defer d.Close()

		info, err := d.FolderInfo(ctx, d.RootLevelFolder())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), dam.Print(info.Name, d.Tree(ctx)))
		return nil
	},
}
