package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noah-isme/gema-tutor-cli/internal/chat"
	"github.com/noah-isme/gema-tutor-cli/pkg/mic"
)

// AudioDownloader fetches media artifacts referenced by chat messages.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, link string) ([]byte, error)
}

// ChatOptions wires the chat loop's collaborators.
type ChatOptions struct {
	Session    *chat.Session
	Recorder   *mic.Recorder
	Downloader AudioDownloader
	// MediaDir receives downloaded voice replies. Empty disables downloads.
	MediaDir string
	// RefreshEvery controls how often new messages are flushed to the
	// terminal. Zero means once per second.
	RefreshEvery time.Duration
}

// RunChat runs the chat view: a background poller fills the timeline while
// the loop reads commands. Plain lines are sent as text; /record captures a
// voice clip and sends it; /retry resends the last failed text; /quit leaves.
func RunChat(ctx context.Context, opts ChatOptions, in io.Reader, out io.Writer) error {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go opts.Session.Run(pollCtx)

	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = time.Second
	}
	go printTimeline(pollCtx, opts, refresh, out)

	fmt.Fprintln(out, "Type a question, /record for voice, /quit to leave.")

	scanner := bufio.NewScanner(in)
	lastFailed := ""
	for {
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case "/quit":
			return nil
		case "/retry":
			if lastFailed == "" {
				fmt.Fprintln(out, "Nothing to retry.")
				continue
			}
			line = lastFailed
		case "/record":
			recordAndSend(ctx, opts, out)
			continue
		case "":
			continue
		}

		if err := opts.Session.SendText(ctx, line); err != nil {
			if errors.Is(err, chat.ErrSendInFlight) {
				fmt.Fprintln(out, "Still sending the previous message.")
				continue
			}
			// Keep the typed text so the learner does not lose it.
			lastFailed = line
			fmt.Fprintf(out, "Send failed: %v (type /retry to resend)\n", err)
			continue
		}
		lastFailed = ""
	}
}

func recordAndSend(ctx context.Context, opts ChatOptions, out io.Writer) {
	if opts.Recorder == nil {
		fmt.Fprintln(out, "Recording is not available.")
		return
	}

	fmt.Fprintln(out, "Recording...")
	clip, err := opts.Recorder.Record(ctx)
	if err != nil {
		if errors.Is(err, mic.ErrBusy) {
			fmt.Fprintln(out, "Already recording.")
			return
		}
		fmt.Fprintf(out, "Microphone access denied or not available: %v\n", err)
		return
	}

	if err := opts.Session.SendAudio(ctx, clip.Name, clip.Data, clip.MIME); err != nil {
		fmt.Fprintf(out, "Audio send failed: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Voice message sent.")
}

// printTimeline flushes messages the previous pass has not shown yet. The
// audio player attaches only to the entry whose link matches the snapshot's
// current reply.
func printTimeline(ctx context.Context, opts ChatOptions, refresh time.Duration, out io.Writer) {
	lastID := 0
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshot := opts.Session.Snapshot()
		for _, message := range snapshot.Messages {
			if message.ID <= lastID {
				continue
			}
			lastID = message.ID

			label := "You"
			if message.FromBot() {
				label = "Bot"
			}
			fmt.Fprintf(out, "%s: %s\n", label, chat.DisplayContent(message))

			if snapshot.AttachPlayer(message) {
				if path := fetchReply(ctx, opts, message.AudioLink); path != "" {
					fmt.Fprintf(out, "     voice reply saved to %s\n", path)
				}
			}
		}
	}
}

func fetchReply(ctx context.Context, opts ChatOptions, link string) string {
	if opts.Downloader == nil || opts.MediaDir == "" {
		return ""
	}

	data, err := opts.Downloader.DownloadAudio(ctx, link)
	if err != nil {
		return ""
	}

	path := filepath.Join(opts.MediaDir, filepath.Base(link))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ""
	}
	return path
}
