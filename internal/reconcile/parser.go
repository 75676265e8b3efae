package reconcile

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/types"
	"nimbus/logger"
)

// Line grammar of the per-profile log file appended by the generated runner
// script. Timestamps come from $(date), e.g. "Wed Aug 20 00:22:05 CDT 2025";
// \s+ absorbs the padding date(1) uses for single-digit days. Transfer
// stats lines use the rclone package's grammar.
var (
	startPattern    = regexp.MustCompile(`(\w{3}\s+\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\s+\w+\s+\d{4}): Starting (?:scheduled )?backup for profile (.+)`)
	completePattern = regexp.MustCompile(`(\w{3}\s+\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\s+\w+\s+\d{4}): Backup completed for profile (.+)`)
)

type parserState int

const (
	stateIdle parserState = iota
	stateInOperation
)

type (
	// parser is the tokenizer/state machine turning raw log text into
	// operation records: Idle -> InOperation on a start marker,
	// InOperation -> Idle on a completion marker. Anything it cannot
	// recognize is either accumulated as log output (while an operation
	// is open) or skipped; a malformed line never aborts the scan.
	parser struct {
		profileID uuid.UUID
		location  *time.Location
		now       func() time.Time

		state   parserState
		current *types.BackupOperation
		results []*types.BackupOperation
	}
)

func newParser(profileID uuid.UUID, location *time.Location, now func() time.Time) *parser {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &parser{
		profileID: profileID,
		location:  location,
		now:       now,
		state:     stateIdle,
		results:   make([]*types.BackupOperation, 0),
	}
}

// parse scans the log text in file order and returns every completed
// operation it found. An operation still open when the text ends is treated
// as implicitly completed at "now".
func (p *parser) parse(logText string) []*types.BackupOperation {
	for _, line := range strings.Split(logText, "\n") {
		p.feed(line)
	}
	if p.state == stateInOperation {
		p.close()
	}
	return p.results
}

func (p *parser) feed(line string) {
	if caps := startPattern.FindStringSubmatch(line); caps != nil {
		p.open(caps[1], caps[2])
		return
	}

	if completePattern.MatchString(line) {
		// a completion marker with nothing open belongs to a run whose
		// start line was garbled, nothing to fabricate
		if p.state == stateInOperation {
			p.close()
		}
		return
	}

	if p.state == stateInOperation {
		p.accumulate(line)
	}
}

func (p *parser) open(timestamp, profileName string) {
	startedAt, err := p.parseTimestamp(timestamp)
	if err != nil {
		// tolerate partial/garbled lines from a writer killed mid-append
		logger.Warn("skipping start line with unparseable timestamp",
			zap.String("timestamp", timestamp),
			zap.Error(err))
		return
	}

	if p.state == stateInOperation {
		logger.Warn("start marker while an operation is open, discarding the unfinished one",
			zap.Time("started_at", p.current.StartedAt))
	}

	p.state = stateInOperation
	p.current = &types.BackupOperation{
		ID:            uuid.New(),
		ProfileID:     p.profileID,
		OperationType: types.OperationBackup,
		Status:        types.StatusRunning,
		StartedAt:     startedAt,
		LogOutput:     fmt.Sprintf("Scheduled backup started for profile: %s", profileName),
	}
}

func (p *parser) accumulate(line string) {
	op := p.current
	op.LogOutput += "\n" + line

	// later stats lines overwrite earlier ones, rclone repeats them as the
	// transfer progresses
	files, bytes := rclone.ScanTransferLine(line)
	if files != nil {
		op.FilesTransferred = *files
	}
	if bytes != nil {
		op.BytesTransferred = *bytes
	}
}

func (p *parser) close() {
	completedAt := p.now().UTC()
	p.current.Status = types.StatusCompleted
	p.current.CompletedAt = &completedAt
	p.results = append(p.results, p.current)
	p.current = nil
	p.state = stateIdle
}

// parseTimestamp reinterprets a $(date) stamp such as
// "Wed Aug 20 00:22:05 CDT 2025" as local wall-clock time and converts it
// to UTC. The timezone abbreviation is untrustworthy across platforms, so
// the configured location wins.
func (p *parser) parseTimestamp(value string) (time.Time, error) {
	parts := strings.Fields(value)
	if len(parts) < 6 {
		return time.Time{}, fmt.Errorf("timestamp %q has %d fields, want 6", value, len(parts))
	}

	reordered := fmt.Sprintf("%s %s %s %s", parts[1], parts[2], parts[5], parts[3])
	local, err := time.ParseInLocation("Jan 2 2006 15:04:05", reordered, p.location)
	if err != nil {
		return time.Time{}, err
	}
	return local.UTC(), nil
}
