// Package pollclient is the Go client for the pollwire API: poll
// creation, vote submission and the live tally kept by viewers of a
// shared poll link.
package pollclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type Option struct {
	ID     string `json:"id"`
	PollID string `json:"pollId"`
	Text   string `json:"text"`
}

type Poll struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// VoteEvent mirrors the server's per-vote notification payload.
type VoteEvent struct {
	OptionID string `json:"optionId"`
}

type errBody struct {
	Err string `json:"err"`
}

func decodeError(resp *http.Response) error {
	var body errBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return apiError(resp.StatusCode, body.Err)
}

// CreatePoll registers a question with its options and returns the new
// poll id and share URL.
func (c *Client) CreatePoll(ctx context.Context, question string, options []string) (id, shareURL string, err error) {
	payload, err := json.Marshal(map[string]any{
		"question": question,
		"options":  options,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/polls", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", "", decodeError(resp)
	}

	var out struct {
		ID       string `json:"id"`
		ShareURL string `json:"shareUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.ID, out.ShareURL, nil
}

// GetPoll fetches the poll, its options and the initial vote snapshot.
func (c *Client) GetPoll(ctx context.Context, pollID string) (*Poll, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/polls/"+pollID, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, decodeError(resp)
	}

	var out struct {
		Poll  Poll     `json:"poll"`
		Votes []string `json:"votes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, err
	}
	return &out.Poll, out.Votes, nil
}

// Vote submits one vote. ErrDuplicateVote means the server already holds
// a vote for this voter on the poll.
func (c *Client) Vote(ctx context.Context, pollID, optionID string) error {
	if pollID == "" || optionID == "" {
		return &ValidationError{Msg: "poll and option required"}
	}

	payload, err := json.Marshal(map[string]string{"optionId": optionID})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/polls/%s/votes", c.baseURL, pollID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

// ListVotes returns the definitive current vote set for the poll, one
// option id per vote.
func (c *Client) ListVotes(ctx context.Context, pollID string) ([]string, error) {
	url := fmt.Sprintf("%s/v1/polls/%s/votes", c.baseURL, pollID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out struct {
		Votes []string `json:"votes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Votes, nil
}

// StreamEvents subscribes to the poll's vote-insert stream. The channel
// closes when ctx is cancelled or the server ends the stream.
func (c *Client) StreamEvents(ctx context.Context, pollID string) (<-chan VoteEvent, error) {
	url := fmt.Sprintf("%s/v1/polls/%s/events", c.baseURL, pollID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streaming request: the client's global timeout would kill it.
	streamClient := &http.Client{Transport: c.client.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	out := make(chan VoteEvent, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			var ev VoteEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
