package queue

import (
	"path/filepath"

	"newsreel/internal/textutil"
)

// StagingRoot returns the per-job staging directory under the configured
// staging area. The directory name is the sanitized job identifier so a
// restart can locate artifacts from a previous run.
func (i *Item) StagingRoot(stagingDir string) string {
	return filepath.Join(stagingDir, textutil.SanitizeFileName(i.JobID))
}

// AudioPath returns the canonical narration file location for the job.
func (i *Item) AudioPath(stagingDir string) string {
	return filepath.Join(i.StagingRoot(stagingDir), "narration.wav")
}

// CuesPath returns the canonical subtitle cues file location for the job.
func (i *Item) CuesPath(stagingDir string) string {
	return filepath.Join(i.StagingRoot(stagingDir), "cues.json")
}

// ScenesPath returns the canonical scene plan file location for the job.
func (i *Item) ScenesPath(stagingDir string) string {
	return filepath.Join(i.StagingRoot(stagingDir), "scenes.json")
}
