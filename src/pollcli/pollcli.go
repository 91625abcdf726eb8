package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pollwire/pollwire/src/pollclient"
)

// minBarWidth keeps a non-zero share visible in the rendered bars
// without changing the printed percentage.
const minBarWidth = 1.0

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("POLLWIRE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := pollclient.NewClient(baseURL)

	memPath, err := pollclient.DefaultMemoryPath()
	if err != nil {
		logrus.Fatalf("vote memory path: %v", err)
	}
	memory, err := pollclient.OpenMemory(memPath)
	if err != nil {
		logrus.Fatalf("vote memory: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "usage: pollcli create <question> <option> <option> [option...]")
			os.Exit(2)
		}
		id, shareURL, err := client.CreatePoll(ctx, os.Args[2], os.Args[3:])
		if err != nil {
			logrus.Fatalf("create: %v", err)
		}
		fmt.Printf("poll %s created\nshare: %s\n", id, shareURL)

	case "show":
		requireID()
		tally := mustTally(ctx, client, memory, os.Args[2])
		render(tally)

	case "vote":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: pollcli vote <poll-id> <option-number>")
			os.Exit(2)
		}
		pollID := os.Args[2]
		poll, snapshot, err := client.GetPoll(ctx, pollID)
		if err != nil {
			logrus.Fatalf("vote: %v", err)
		}
		n, err := strconv.Atoi(os.Args[3])
		if err != nil || n < 1 || n > len(poll.Options) {
			logrus.Fatalf("option number must be 1-%d", len(poll.Options))
		}
		tally := pollclient.NewTally(client, memory, poll, snapshot)
		if tally.State() == pollclient.StateVoted {
			fmt.Println("you have already voted on this poll")
			render(tally)
			return
		}
		err = tally.Submit(ctx, poll.Options[n-1].ID)
		switch {
		case errors.Is(err, pollclient.ErrDuplicateVote):
			fmt.Println("you have already voted on this poll")
		case err != nil:
			logrus.Fatalf("vote: %v", err)
		default:
			fmt.Println("vote recorded")
		}
		render(tally)

	case "watch":
		requireID()
		pollID := os.Args[2]
		tally := mustTally(ctx, client, memory, pollID)
		defer tally.Close()

		events, err := client.StreamEvents(ctx, pollID)
		if err != nil {
			logrus.Fatalf("watch: %v", err)
		}
		render(tally)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				tally.Apply(ev)
				render(tally)
			}
		}

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pollcli <create|show|vote|watch> ...")
	fmt.Fprintln(os.Stderr, "  create <question> <option> <option> [option...]")
	fmt.Fprintln(os.Stderr, "  show <poll-id>")
	fmt.Fprintln(os.Stderr, "  vote <poll-id> <option-number>")
	fmt.Fprintln(os.Stderr, "  watch <poll-id>")
}

func requireID() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}
}

func mustTally(ctx context.Context, client *pollclient.Client, memory *pollclient.Memory, pollID string) *pollclient.Tally {
	poll, snapshot, err := client.GetPoll(ctx, pollID)
	if err != nil {
		logrus.Fatalf("load poll: %v", err)
	}
	fmt.Println(poll.Question)
	return pollclient.NewTally(client, memory, poll, snapshot)
}

func render(tally *pollclient.Tally) {
	bars := tally.Bars(minBarWidth)
	_, total := tally.Counts()
	fmt.Printf("\n%d vote(s)\n", total)
	for i, b := range bars {
		mark := " "
		if b.Selected {
			mark = "*"
		}
		fmt.Printf("%s %2d. %-30s %5.1f%% (%d) %s\n",
			mark, i+1, b.Option.Text, b.Percent, b.Votes, bar(b.Width))
	}
}

func bar(width float64) string {
	const scale = 40
	n := int(width / 100 * scale)
	if width > 0 && n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
