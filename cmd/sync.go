package main

import (
	"fmt"

	"github.com/jacobsenj/canto-fal/internal/batch"
	"github.com/jacobsenj/canto-fal/internal/filerecord"
	"github.com/jacobsenj/canto-fal/internal/metadata"
	"github.com/jacobsenj/canto-fal/pkg/db"
	"github.com/jacobsenj/canto-fal/pkg/s3"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-synchronise local file records with their remote assets",
}

var syncMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Re-import metadata and refresh previews of every Canto file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, batch.Metadata)
	},
}

var syncFrontendAssetsCmd = &cobra.Command{
	Use:   "frontend-assets",
	Short: "Refresh referenced Canto files that changed remotely",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, batch.FrontendAssets)
	},
}

func init() {
	syncCmd.AddCommand(syncMetadataCmd)
	syncCmd.AddCommand(syncFrontendAssetsCmd)
}

func runSync(cmd *cobra.Command, variant batch.Variant) error {
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

	var objects filerecord.ObjectStore
	if a.cfg.S3 != nil {
		client, err := s3.NewClient(a.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		a.log.Infof("S3 client initialized with bucket: %s", a.cfg.S3.BucketName)
		objects = client
	}

	job, err := batch.New(batch.Options{
		Variant:    variant,
		Store:      store,
		Open:       batch.FactoryOpener(drivers),
		Renditions: filerecord.NewRenditions(store, objects, a.log),
		Extractor:  metadata.Extractor{},
		Out:        cmd.OutOrStdout(),
		Log:        a.log,
	})
	if err != nil {
		return err
	}

	summary, err := job.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d, skipped %d, failed %d\n", summary.Processed, summary.Skipped, summary.Failed)
	return nil
}
