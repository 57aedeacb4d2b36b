// Command watch submits one generation request and follows it to completion,
// printing every state change. Useful for exercising a running API instance
// from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeckxploit/video-generate-ai/internal/client"
	"github.com/jeckxploit/video-generate-ai/internal/domain"
	"github.com/jeckxploit/video-generate-ai/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		baseURL   = flag.String("base-url", "http://localhost:8080", "API base URL")
		videoType = flag.String("type", "promotional", "video type")
		style     = flag.String("style", "modern", "visual style")
		duration  = flag.String("duration", "medium", "target duration")
		format    = flag.String("format", "landscape", "output format")
		userText  = flag.String("prompt", "", "what the video should show (required)")
		timeout   = flag.Duration("timeout", 10*time.Minute, "give up after this long")
	)
	flag.Parse()

	if *userText == "" {
		fmt.Fprintln(os.Stderr, "watch: -prompt is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := infra.NewLogger("development")
	monitor := client.NewMonitor(client.Options{BaseURL: *baseURL}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	jobID, err := monitor.Submit(ctx, client.Config{
		VideoType: *videoType,
		Style:     *style,
		Duration:  *duration,
		Format:    *format,
		Prompt:    *userText,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("submit failed")
	}
	fmt.Printf("job %s submitted\n", jobID)

	for {
		select {
		case <-ctx.Done():
			monitor.Reset()
			logger.Fatal().Msg("timed out waiting for job to finish")
		case job := <-monitor.Updates():
			fmt.Printf("  %-10s %3d%%\n", job.Status, job.Progress)
			switch job.Status {
			case domain.JobStatusCompleted:
				fmt.Printf("video:     %s\n", job.VideoURL)
				fmt.Printf("thumbnail: %s\n", job.ThumbnailURL)
				if job.IsDemo {
					fmt.Println("(demo output)")
				}
				return
			case domain.JobStatusFailed:
				fmt.Fprintf(os.Stderr, "generation failed: %s\n", job.ErrorMessage)
				os.Exit(1)
			}
		}
	}
}
