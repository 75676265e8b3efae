package rclone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nimbus/internal/types"
)

func TestScanTransferLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		files *uint64
		bytes *uint64
	}{
		{
			name:  "file count line",
			line:  "Transferred:           57 / 57, 100%",
			files: ptr(uint64(57)),
		},
		{
			name:  "byte count line",
			line:  "Transferred:   	  1.250 GiB / 1.250 GiB, 100%, 42.5 MiB/s, ETA 0s",
			bytes: ptr(uint64(1_342_177_280)),
		},
		{
			name: "unrelated line",
			line: "Elapsed time:        31.2s",
		},
		{
			name:  "decimal units",
			line:  "Transferred:   	  500 MB / 500 MB, 100%",
			bytes: ptr(uint64(500_000_000)),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			files, bytes := ScanTransferLine(test.line)
			assert.Equal(t, test.files, files)
			assert.Equal(t, test.bytes, bytes)
		})
	}
}

func TestStatsFromOutput_LastLineWins(t *testing.T) {
	output := `Transferred:   	  100 MiB / 1 GiB, 10%
Transferred:           5 / 57, 8%
Transferred:   	  1 GiB / 1 GiB, 100%
Transferred:           57 / 57, 100%`

	files, bytes := StatsFromOutput(output)
	assert.Equal(t, uint64(57), files)
	assert.Equal(t, uint64(1_073_741_824), bytes)
}

func TestParseDryRun(t *testing.T) {
	output := `2025/08/20 09:00:01 NOTICE: docs/report.pdf: Skipped copy as --dry-run is set (size 1.5Mi)
2025/08/20 09:00:01 NOTICE: docs/old.txt: Skipped delete as --dry-run is set
2025/08/20 09:00:02 NOTICE: photos/cat.jpg: Skipped update as --dry-run is set (size 250Ki)
some other log line`

	changes := ParseDryRun(output)
	require.Len(t, changes, 3)

	assert.Equal(t, "docs/report.pdf", changes[0].Path)
	assert.Equal(t, types.ActionCopy, changes[0].Action)
	assert.Equal(t, int64(1_572_864), changes[0].Size)

	assert.Equal(t, "docs/old.txt", changes[1].Path)
	assert.Equal(t, types.ActionDelete, changes[1].Action)
	assert.Zero(t, changes[1].Size)

	assert.Equal(t, "photos/cat.jpg", changes[2].Path)
	assert.Equal(t, types.ActionUpdate, changes[2].Action)
}

func TestParseListing_DirsFirstThenName(t *testing.T) {
	jsonText := `[
		{"Path":"b.txt","Name":"b.txt","Size":10,"ModTime":"2025-08-20T09:00:00Z","IsDir":false},
		{"Path":"photos","Name":"photos","Size":0,"ModTime":"2025-08-20T09:00:00Z","IsDir":true},
		{"Path":"a.txt","Name":"a.txt","Size":5,"ModTime":"2025-08-20T09:00:00Z","IsDir":false,"MimeType":"text/plain"}
	]`

	files, err := parseListing(jsonText)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "photos", files[0].Name)
	assert.True(t, files[0].IsDir)
	assert.Equal(t, "a.txt", files[1].Name)
	assert.Equal(t, "text/plain", files[1].MimeType)
	assert.Equal(t, "b.txt", files[2].Name)
}

func TestParseListing_Invalid(t *testing.T) {
	_, err := parseListing("not json")
	assert.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
