// Package pipeline runs one watch pass over a YouTube channel.
//
// A run resolves the channel's latest upload and compares it with the stored
// checkpoint. When the video is new it is downloaded, transcribed, summarized
// and delivered, and only then recorded as processed:
//
//	p := pipeline.New(pipeline.Deps{
//	    Store:       checkpoint.NewStore("last_video_id.txt"),
//	    Resolver:    ytClient,
//	    Fetcher:     fetcher,
//	    Transcriber: transcriber,
//	    Summarizer:  summarizer,
//	    Notifier:    mailer,
//	    Remover:     audioStore,
//	    ChannelID:   channelID,
//	})
//	result, err := p.Run(ctx)
//
// Every failure stops the run and is returned as a typed *errors.Error, so
// the next run retries the same video from the beginning.
package pipeline
