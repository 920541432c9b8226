package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, client_id, video_url, tweet_text, access_token, access_secret, status, source_file, trimmed_file, trim_start, trim_duration, media_id, tweet_id, error_message, attempts, created_at, updated_at, progress_stage, progress_percent, progress_message, last_heartbeat"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		clientID         string
		videoURL         string
		tweetText        sql.NullString
		accessToken      sql.NullString
		accessSecret     sql.NullString
		statusStr        string
		sourceFile       sql.NullString
		trimmedFile      sql.NullString
		trimStart        sql.NullFloat64
		trimDuration     sql.NullFloat64
		mediaID          sql.NullString
		tweetID          sql.NullString
		errorMessage     sql.NullString
		attempts         sql.NullInt64
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&clientID,
		&videoURL,
		&tweetText,
		&accessToken,
		&accessSecret,
		&statusStr,
		&sourceFile,
		&trimmedFile,
		&trimStart,
		&trimDuration,
		&mediaID,
		&tweetID,
		&errorMessage,
		&attempts,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		ClientID:        clientID,
		VideoURL:        videoURL,
		TweetText:       tweetText.String,
		AccessToken:     accessToken.String,
		AccessSecret:    accessSecret.String,
		Status:          Status(statusStr),
		SourceFile:      sourceFile.String,
		TrimmedFile:     trimmedFile.String,
		TrimStart:       trimStart.Float64,
		TrimDuration:    trimDuration.Float64,
		MediaID:         mediaID.String,
		TweetID:         tweetID.String,
		ErrorMessage:    errorMessage.String,
		Attempts:        int(attempts.Int64),
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
