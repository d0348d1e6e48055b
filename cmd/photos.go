package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahd-playgrounds/google-task-cli/internal/photos"
)

var (
	maxItems    int
	description string
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List, inspect and upload Google Photos media items",
}

var photosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media items from your library",
	Long: `List media items from your Google Photos library, newest first.

Pages through the library using continuation tokens until the requested
number of items has been collected.

Examples:
  google-task-cli photos list            # List up to 50 items
  google-task-cli photos list --max 200  # List up to 200 items`,
	RunE: runPhotosList,
}

var photosGetCmd = &cobra.Command{
	Use:   "get <media-item-id>",
	Short: "Show one media item by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhotosGet,
}

var photosUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files to your library",
	Long: `Upload one or more files to your Google Photos library.

Each file's raw bytes are uploaded first, then a single batch create
finalizes all items in the library.

Examples:
  google-task-cli photos upload holiday.jpg
  google-task-cli photos upload *.heic --description "Rome trip"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPhotosUpload,
}

func init() {
	photosListCmd.Flags().IntVar(&maxItems, "max", 50, "maximum number of items to list (0 for the whole library)")
	photosUploadCmd.Flags().StringVar(&description, "description", "", "description applied to the created items")

	photosCmd.AddCommand(photosListCmd)
	photosCmd.AddCommand(photosGetCmd)
	photosCmd.AddCommand(photosUploadCmd)
}

func newPhotosClient(ctx context.Context) (*photos.Client, error) {
	authManager, err := newAuthManager(ctx)
	if err != nil {
		return nil, err
	}
	if !authManager.HasValidToken() {
		return nil, fmt.Errorf("authentication required. Run 'google-task-cli auth' first")
	}

	httpClient, err := authManager.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	return photos.NewClient(httpClient, cfg.Photos.PageSize), nil
}

func runPhotosList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newPhotosClient(ctx)
	if err != nil {
		return err
	}

	items, err := client.List(ctx, maxItems)
	if err != nil {
		return fmt.Errorf("failed to list media items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No media items found.")
		return nil
	}

	fmt.Println("=== Media Items ===")
	for _, item := range items {
		fmt.Printf("%s  %s\n", item.MediaMetadata.CreationTime, item.Filename)
		fmt.Printf("  ID: %s\n", item.ID)
		if item.Description != "" {
			fmt.Printf("  Description: %s\n", item.Description)
		}
	}
	fmt.Printf("\nTotal items: %d\n", len(items))

	return nil
}

func runPhotosGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newPhotosClient(ctx)
	if err != nil {
		return err
	}

	item, err := client.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Filename:  %s\n", item.Filename)
	fmt.Printf("ID:        %s\n", item.ID)
	fmt.Printf("MIME type: %s\n", item.MimeType)
	fmt.Printf("Created:   %s\n", item.MediaMetadata.CreationTime)
	if item.MediaMetadata.Width != "" {
		fmt.Printf("Size:      %sx%s\n", item.MediaMetadata.Width, item.MediaMetadata.Height)
	}
	if item.Description != "" {
		fmt.Printf("Description: %s\n", item.Description)
	}
	if item.ProductURL != "" {
		fmt.Printf("Link:      %s\n", item.ProductURL)
	}

	return nil
}

func runPhotosUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newPhotosClient(ctx)
	if err != nil {
		return err
	}

	newItems := make([]photos.NewMediaItem, 0, len(args))
	for _, path := range args {
		fmt.Printf("Uploading %s...\n", path)
		uploadToken, err := client.UploadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", path, err)
		}
		newItems = append(newItems, photos.NewMediaItemForFile(path, uploadToken, description))
	}

	fmt.Printf("Creating %d library item(s)...\n", len(newItems))
	results, err := client.BatchCreate(ctx, newItems)
	if err != nil {
		return fmt.Errorf("failed to create media items: %w", err)
	}

	created := 0
	for i, result := range results {
		name := result.UploadToken
		if i < len(args) {
			name = args[i]
		}
		if result.OK() && result.MediaItem != nil {
			created++
			fmt.Printf("Created %s (id: %s)\n", name, result.MediaItem.ID)
		} else {
			fmt.Printf("Failed %s: %s\n", name, result.Status.Message)
		}
	}
	fmt.Printf("\nDone: %d/%d items created.\n", created, len(results))

	return nil
}
