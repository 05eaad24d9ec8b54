package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, job_id, topic, image_path, style, voice_preference, voice_id, music_path,
	target_seconds, status, script_json, audio_file, audio_seconds, synth_provider,
	cues_file, scenes_file, rendered_file, final_file, error_message,
	created_at, updated_at, progress_stage, progress_percent, progress_message,
	last_heartbeat, cancel_requested, stage_attempts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item            Item
		status          string
		topic           sql.NullString
		imagePath       sql.NullString
		style           sql.NullString
		voicePreference sql.NullString
		voiceID         sql.NullString
		musicPath       sql.NullString
		scriptJSON      sql.NullString
		audioFile       sql.NullString
		synthProvider   sql.NullString
		cuesFile        sql.NullString
		scenesFile      sql.NullString
		renderedFile    sql.NullString
		finalFile       sql.NullString
		errorMessage    sql.NullString
		createdAt       string
		updatedAt       string
		progressStage   sql.NullString
		progressMessage sql.NullString
		lastHeartbeat   sql.NullString
		cancelRequested int
	)

	if err := scanner.Scan(
		&item.ID,
		&item.JobID,
		&topic,
		&imagePath,
		&style,
		&voicePreference,
		&voiceID,
		&musicPath,
		&item.TargetSeconds,
		&status,
		&scriptJSON,
		&audioFile,
		&item.AudioSeconds,
		&synthProvider,
		&cuesFile,
		&scenesFile,
		&renderedFile,
		&finalFile,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&progressStage,
		&item.ProgressPercent,
		&progressMessage,
		&lastHeartbeat,
		&cancelRequested,
		&item.StageAttempts,
	); err != nil {
		return nil, err
	}

	item.Status = Status(status)
	item.Topic = topic.String
	item.ImagePath = imagePath.String
	item.Style = style.String
	item.VoicePreference = voicePreference.String
	item.VoiceID = voiceID.String
	item.MusicPath = musicPath.String
	item.ScriptJSON = scriptJSON.String
	item.AudioFile = audioFile.String
	item.SynthProvider = synthProvider.String
	item.CuesFile = cuesFile.String
	item.ScenesFile = scenesFile.String
	item.RenderedFile = renderedFile.String
	item.FinalFile = finalFile.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.CancelRequested = cancelRequested != 0

	var err error
	if item.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if lastHeartbeat.Valid && strings.TrimSpace(lastHeartbeat.String) != "" {
		ts, err := parseTimeString(lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		item.LastHeartbeat = &ts
	}

	return &item, nil
}

func parseTimeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(ts *time.Time) any {
	if ts == nil || ts.IsZero() {
		return nil
	}
	return formatTime(*ts)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
