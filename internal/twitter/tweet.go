package twitter

import (
	"context"
	"fmt"
	"net/url"

	"clipshare/internal/logging"
)

type tweetResponse struct {
	IDString string `json:"id_str"`
}

// UpdateStatus posts a tweet referencing an uploaded media id and returns the
// created tweet id.
func (c *Client) UpdateStatus(ctx context.Context, token Token, message, mediaID string) (string, error) {
	form := url.Values{}
	form.Set("status", message)
	form.Set("media_ids", mediaID)

	body, err := c.postForm(ctx, "status update", c.apiBase+"/statuses/update.json", form, &token, nil)
	if err != nil {
		return "", err
	}
	var resp tweetResponse
	if err := decodeJSON("status update", body, &resp); err != nil {
		return "", err
	}
	if resp.IDString == "" {
		return "", fmt.Errorf("status update: response missing id_str")
	}
	return resp.IDString, nil
}

// TweetVideo uploads a video through the chunked protocol and posts a tweet
// referencing it. It returns the created tweet id.
func (c *Client) TweetVideo(ctx context.Context, token Token, videoPath, message string) (string, error) {
	mediaID, err := c.Upload(ctx, token, videoPath)
	if err != nil {
		return "", err
	}
	tweetID, err := c.UpdateStatus(ctx, token, message, mediaID)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "tweet posted",
		logging.String("media_id", mediaID),
		logging.String("tweet_id", tweetID))
	return tweetID, nil
}
