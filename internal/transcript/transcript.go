// Package transcript writes per-run council transcripts to disk, optionally
// zstd-compressed, so finished runs can be audited or replayed.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// sanitize replaces characters that are unsafe in filenames.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// maxQuerySlug bounds how much of the query ends up in the filename.
const maxQuerySlug = 48

func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = unsafeChars.ReplaceAllString(s, "")
	if len(s) > maxQuerySlug {
		s = s[:maxQuerySlug]
	}
	if s == "" {
		s = "unnamed"
	}
	return s
}

// Filename returns the transcript filename for a council run.
func Filename(query string, ts time.Time, compressed bool) string {
	name := fmt.Sprintf("%s-%s.json", sanitizeName(query), ts.Format("20060102-150405"))
	if compressed {
		name += ".zst"
	}
	return name
}

// Write serializes a CouncilTranscript and writes it to dir. With compress
// set, the file is zstd-compressed and named .json.zst.
func Write(dir string, t *models.CouncilTranscript, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	name := Filename(t.Query, t.StartedAt, compress)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	if compress {
		data, err = compressZstd(data)
		if err != nil {
			return "", fmt.Errorf("compress transcript: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	return path, nil
}

// Read loads a transcript written by Write, transparently decompressing
// .zst files.
func Read(path string) (*models.CouncilTranscript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompressZstd(data)
		if err != nil {
			return nil, fmt.Errorf("decompress transcript: %w", err)
		}
	}

	var t models.CouncilTranscript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	return &t, nil
}

// Build constructs a CouncilTranscript from a finished run.
func Build(result *models.CouncilResult, chairman string) *models.CouncilTranscript {
	members := make([]string, 0, len(result.Responses))
	for _, r := range result.Responses {
		members = append(members, r.ModelID)
	}

	t := &models.CouncilTranscript{
		Query:       result.Query,
		StartedAt:   result.StartedAt,
		CompletedAt: result.StartedAt.Add(time.Duration(result.DurationMs) * time.Millisecond),
		DurationMs:  result.DurationMs,
		Members:     members,
		Chairman:    chairman,
		Responses:   result.Responses,
		Labels:      result.LabelToModel,
		Rankings:    result.Rankings,
		Aggregate:   result.Aggregate,
		Consensus:   result.ConsensusScore(),
		Warnings:    result.Warnings,
	}
	if result.Synthesis != nil {
		t.FinalAnswer = result.Synthesis.Content
		if t.Chairman == "" {
			t.Chairman = result.Synthesis.ModelID
		}
	}
	return t
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
