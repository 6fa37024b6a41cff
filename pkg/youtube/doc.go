// Package youtube provides the two YouTube Data API v3 lookups ytdigest needs.
//
// LatestUpload resolves a channel's uploads playlist (channels.list with
// contentDetails) and returns its first, most recent, item. Search runs a
// video-only keyword search and returns results in the order the API ranked
// them. Every failure, including an invalid API key or an empty channel, is
// returned as a platform error carrying the HTTP status when there is one.
//
// Example usage:
//
//	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, log)
//	if err != nil {
//	    return err
//	}
//	latest, err := client.LatestUpload(ctx, cfg.YouTube.ChannelID)
//
//	results, err := client.Search(ctx, "smart healthcare IoT", 5)
//	_ = youtube.WriteResults(os.Stdout, results)
package youtube
