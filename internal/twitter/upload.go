package twitter

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"clipshare/internal/logging"
)

const (
	commandInit     = "INIT"
	commandAppend   = "APPEND"
	commandFinalize = "FINALIZE"
	commandStatus   = "STATUS"

	mediaCategoryVideo = "tweet_video"

	stateSucceeded = "succeeded"
	stateFailed    = "failed"
)

type uploadResponse struct {
	MediaIDString  string          `json:"media_id_string"`
	ProcessingInfo *processingInfo `json:"processing_info"`
}

type processingInfo struct {
	State          string                `json:"state"`
	CheckAfterSecs int                   `json:"check_after_secs"`
	Error          *processingInfoDetail `json:"error"`
}

type processingInfoDetail struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// uploadSession tracks the two independent completion signals of the append
// phase: end of the source stream and acknowledgment of the final chunk.
// Whichever signal arrives second completes the session, exactly once.
type uploadSession struct {
	mu       sync.Mutex
	eofSeen  bool
	inFlight bool
	once     sync.Once
	done     chan struct{}
}

func newUploadSession() *uploadSession {
	return &uploadSession{done: make(chan struct{})}
}

func (s *uploadSession) begin() {
	s.mu.Lock()
	s.inFlight = true
	s.mu.Unlock()
}

// ack records a chunk acknowledgment. If the source already hit EOF this was
// the final chunk and the session completes.
func (s *uploadSession) ack() {
	s.mu.Lock()
	s.inFlight = false
	eof := s.eofSeen
	s.mu.Unlock()
	if eof {
		s.complete()
	}
}

// markEOF records end of source. If no chunk is awaiting acknowledgment the
// final ack already landed and the session completes.
func (s *uploadSession) markEOF() {
	s.mu.Lock()
	s.eofSeen = true
	inFlight := s.inFlight
	s.mu.Unlock()
	if !inFlight {
		s.complete()
	}
}

func (s *uploadSession) complete() {
	s.once.Do(func() { close(s.done) })
}

// Upload drives the chunked media-upload protocol for a video file:
// INIT, sequential APPENDs, FINALIZE, then a STATUS poll while the platform
// processes the media. It returns the media id on success.
//
// The poll loop honors ctx cancellation but imposes no deadline of its own;
// callers are expected to bound it with a deadline on ctx.
func (c *Client) Upload(ctx context.Context, token Token, videoPath string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat media file: %w", err)
	}

	mediaID, err := c.initUpload(ctx, token, mediaTypeFor(videoPath), info.Size())
	if err != nil {
		return "", err
	}
	log := c.logger.With(logging.String("media_id", mediaID))
	log.InfoContext(ctx, "upload initialized",
		logging.Int64("total_bytes", info.Size()),
		logging.Int64("chunk_size", c.chunkSize))

	if err := c.appendChunks(ctx, token, mediaID, file); err != nil {
		return "", err
	}

	finalizeResp, err := c.finalize(ctx, token, mediaID)
	if err != nil {
		return "", err
	}

	// Absent processing_info means the media is ready immediately.
	if finalizeResp.ProcessingInfo == nil {
		return mediaID, nil
	}
	if err := c.awaitProcessing(ctx, token, mediaID, finalizeResp.ProcessingInfo); err != nil {
		return "", err
	}
	log.InfoContext(ctx, "upload processing complete")
	return mediaID, nil
}

func (c *Client) initUpload(ctx context.Context, token Token, mediaType string, totalBytes int64) (string, error) {
	form := url.Values{}
	form.Set("command", commandInit)
	form.Set("media_type", mediaType)
	form.Set("total_bytes", strconv.FormatInt(totalBytes, 10))
	form.Set("media_category", mediaCategoryVideo)

	body, err := c.postForm(ctx, "media init", c.uploadBase+"/media/upload.json", form, &token, nil)
	if err != nil {
		return "", err
	}
	var resp uploadResponse
	if err := decodeJSON("media init", body, &resp); err != nil {
		return "", err
	}
	if resp.MediaIDString == "" {
		return "", fmt.Errorf("media init: response missing media_id_string")
	}
	return resp.MediaIDString, nil
}

// appendChunks streams the source through fixed-size APPEND commands with a
// strictly increasing segment index, each awaiting the previous
// acknowledgment. A failed append aborts the remaining chunks.
func (c *Client) appendChunks(ctx context.Context, token Token, mediaID string, source io.Reader) error {
	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()

	session := newUploadSession()
	chunks := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, c.chunkSize)
			n, err := io.ReadFull(source, buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-readCtx.Done():
					readErr <- readCtx.Err()
					return
				}
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				readErr <- nil
				session.markEOF()
				return
			}
			if err != nil {
				readErr <- fmt.Errorf("read media chunk: %w", err)
				return
			}
		}
	}()

	segment := 0
	for chunk := range chunks {
		session.begin()
		if err := c.appendChunk(ctx, token, mediaID, segment, chunk); err != nil {
			cancelRead()
			return err
		}
		session.ack()
		segment++
	}

	if err := <-readErr; err != nil {
		return err
	}

	select {
	case <-session.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (c *Client) appendChunk(ctx context.Context, token Token, mediaID string, segment int, chunk []byte) error {
	form := url.Values{}
	form.Set("command", commandAppend)
	form.Set("media_id", mediaID)
	form.Set("segment_index", strconv.Itoa(segment))
	form.Set("media", base64.StdEncoding.EncodeToString(chunk))

	_, err := c.postForm(ctx, "media append", c.uploadBase+"/media/upload.json", form, &token, nil)
	if err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "chunk appended",
		logging.String("media_id", mediaID),
		logging.Int("segment", segment),
		logging.Int("bytes", len(chunk)))
	return nil
}

func (c *Client) finalize(ctx context.Context, token Token, mediaID string) (*uploadResponse, error) {
	form := url.Values{}
	form.Set("command", commandFinalize)
	form.Set("media_id", mediaID)

	body, err := c.postForm(ctx, "media finalize", c.uploadBase+"/media/upload.json", form, &token, nil)
	if err != nil {
		return nil, err
	}
	var resp uploadResponse
	if err := decodeJSON("media finalize", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// awaitProcessing polls STATUS until the platform reports a terminal state.
// Unknown states keep polling.
func (c *Client) awaitProcessing(ctx context.Context, token Token, mediaID string, initial *processingInfo) error {
	current := initial
	for {
		if current != nil {
			switch current.State {
			case stateSucceeded:
				return nil
			case stateFailed:
				perr := &ProcessingError{MediaID: mediaID, State: stateFailed}
				if current.Error != nil {
					perr.Code = current.Error.Code
					perr.Name = current.Error.Name
					perr.Message = current.Error.Message
				}
				return perr
			}
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}

		params := url.Values{}
		params.Set("command", commandStatus)
		params.Set("media_id", mediaID)
		body, err := c.getForm(ctx, "media status", c.uploadBase+"/media/upload.json", params, &token)
		if err != nil {
			return err
		}
		var resp uploadResponse
		if err := decodeJSON("media status", body, &resp); err != nil {
			return err
		}
		current = resp.ProcessingInfo
	}
}

func mediaTypeFor(path string) string {
	if mediaType := mime.TypeByExtension(filepath.Ext(path)); mediaType != "" {
		return mediaType
	}
	return "video/mp4"
}
