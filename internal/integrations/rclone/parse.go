package rclone

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"nimbus"
	"nimbus/internal/types"
)

// Transfer stats as rclone prints them. The integer form counts files, the
// size-suffixed form counts bytes.
var (
	filesPattern = regexp.MustCompile(`Transferred:\s+(\d+) / (\d+), \d+%`)
	bytesPattern = regexp.MustCompile(`Transferred:\s+([0-9.,]+\s*[KMGT]?i?B) / ([0-9.,]+\s*[KMGT]?i?B)`)

	noticePattern = regexp.MustCompile(`NOTICE:\s+(.+?): Skipped (copy|update|delete) as --dry-run is set(?: \(size (\S+)\))?`)
)

// ScanTransferLine extracts the file and byte counters from one
// "Transferred:" stats line. Either result may be nil when the line is of
// the other form.
func ScanTransferLine(line string) (files, bytes *uint64) {
	if !strings.Contains(line, "Transferred:") {
		return nil, nil
	}
	if caps := filesPattern.FindStringSubmatch(line); caps != nil {
		if n, err := strconv.ParseUint(caps[1], 10, 64); err == nil {
			files = &n
		}
	}
	if caps := bytesPattern.FindStringSubmatch(line); caps != nil {
		if n, err := nimbus.ParseByteSize(caps[2]); err == nil {
			bytes = &n
		}
	}
	return files, bytes
}

// StatsFromOutput scans a whole transfer log; rclone repeats the stats
// block as the run progresses so the last occurrence wins.
func StatsFromOutput(text string) (files, bytes uint64) {
	for _, line := range strings.Split(text, "\n") {
		f, b := ScanTransferLine(line)
		if f != nil {
			files = *f
		}
		if b != nil {
			bytes = *b
		}
	}
	return files, bytes
}

// ParseDryRun turns `--dry-run` NOTICE lines into the change set a sync
// would apply.
func ParseDryRun(output string) []types.FileChange {
	changes := make([]types.FileChange, 0)
	for _, line := range strings.Split(output, "\n") {
		caps := noticePattern.FindStringSubmatch(line)
		if caps == nil {
			continue
		}

		change := types.FileChange{Path: caps[1]}
		switch caps[2] {
		case "copy":
			change.Action = types.ActionCopy
		case "update":
			change.Action = types.ActionUpdate
		case "delete":
			change.Action = types.ActionDelete
		}
		if caps[3] != "" {
			// rclone prints short suffixes ("1.5Mi") in dry-run notices
			sizeStr := caps[3]
			if !strings.HasSuffix(sizeStr, "B") {
				sizeStr += "B"
			}
			if size, err := nimbus.ParseByteSize(sizeStr); err == nil {
				change.Size = int64(size)
			}
		}
		changes = append(changes, change)
	}
	return changes
}

type lsjsonItem struct {
	Path     string `json:"Path"`
	Name     string `json:"Name"`
	Size     int64  `json:"Size"`
	ModTime  string `json:"ModTime"`
	IsDir    bool   `json:"IsDir"`
	MimeType string `json:"MimeType"`
}

func parseListing(jsonText string) ([]types.CloudFile, error) {
	items := make([]lsjsonItem, 0)
	if err := json.Unmarshal([]byte(jsonText), &items); err != nil {
		return nil, errors.Wrap(err, "failed to parse rclone listing")
	}

	files := make([]types.CloudFile, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.Path
		}

		modTime := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, item.ModTime); err == nil {
			modTime = parsed.UTC()
		}

		files = append(files, types.CloudFile{
			Path:     item.Path,
			Name:     name,
			Size:     item.Size,
			ModTime:  modTime,
			IsDir:    item.IsDir,
			MimeType: item.MimeType,
		})
	}

	// directories first, then by name
	sort.Slice(files, func(i, j int) bool {
		if files[i].IsDir != files[j].IsDir {
			return files[i].IsDir
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}
