package main

import (
	"fmt"
	"strconv"

	"github.com/jacobsenj/canto-fal/internal/filerecord"
	"github.com/jacobsenj/canto-fal/internal/mdc"
	"github.com/jacobsenj/canto-fal/pkg/db"
	"github.com/jacobsenj/canto-fal/pkg/s3"

	"github.com/spf13/cobra"
)

var renderFlags struct {
	preview   bool
	width     int
	height    int
	extension string
}

var renderCmd = &cobra.Command{
	Use:   "render <storage-id> <file-identifier>",
	Short: "Derive a rendition of an indexed file",
	Long: `render produces a processed file for an indexed Canto file. Storages with
media delivery get a delivery URL, others a copy in the rendition bucket.`,
	Args: cobra.ExactArgs(2),
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
		if err := a.openDatabase(); err != nil {
			return err
		}
		store := filerecord.NewGormStore(db.GetDB())

		record, err := store.FindByIdentifier(ctx, storageID, args[1])
		if err != nil {
			return err
		}

		var (
			objects filerecord.ObjectStore
			bucket  *s3.Client
		)
		if a.cfg.S3 != nil {
			bucket, err = s3.NewClient(a.cfg.S3)
			if err != nil {
				return fmt.Errorf("failed to initialize S3 client: %w", err)
			}
			objects = bucket
		}

		d, err := drivers.Open(ctx, storageID)
		if err != nil {
			return err
		}
		defer d.Close()

		task := mdc.Task{
			Name: mdc.TaskCropScaleMask,
			Configuration: mdc.Configuration{
				Width:         renderFlags.width,
				Height:        renderFlags.height,
				FileExtension: renderFlags.extension,
			},
			ImageWidth:  renderFlags.width,
			ImageHeight: renderFlags.height,
		}
		if renderFlags.preview {
			task.Name = mdc.TaskPreview
		}

		processed, err := filerecord.NewRenditions(store, objects, a.log).Process(ctx, d, record, task)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if processed.ProcessingURL != "" {
			fmt.Fprintln(out, processed.ProcessingURL)
			return nil
		}
		url, err := bucket.GetDownloadPresignedURL(processed.StorageKey, a.cfg.S3.PresignLifetime)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, url)
		return nil
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderFlags.preview, "preview", false, "derive a preview instead of a scaled copy")
	renderCmd.Flags().IntVar(&renderFlags.width, "width", 0, "target width in pixels")
	renderCmd.Flags().IntVar(&renderFlags.height, "height", 0, "target height in pixels")
	renderCmd.Flags().StringVar(&renderFlags.extension, "ext", "", "target file extension")
	rootCmd.AddCommand(renderCmd)
}
