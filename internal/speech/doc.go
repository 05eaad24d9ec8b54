// Package speech synthesizes narration audio from a job script. Providers
// sit behind a single Synthesize contract and are tried in a prioritized
// fallback chain; the duration recorded on the job is always measured from
// the written WAV file rather than trusted from provider metadata.
package speech
