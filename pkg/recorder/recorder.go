// Package recorder writes game frames to JSON Lines files for later replay.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trytobebee/gridsnake/pkg/game"
)

// StepRecord is one line of a recording.
type StepRecord struct {
	Seq   int           `json:"seq"`
	Time  time.Time     `json:"time"`
	State game.Snapshot `json:"state"`
}

// Recorder handles asynchronous logging of game frames.
type Recorder struct {
	path       string
	file       *os.File
	writer     *bufio.Writer
	recordChan chan StepRecord
	log        zerolog.Logger
	wg         sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	seq     int
	dropped int
}

// New creates a recorder writing to dir.
// Filename format: game_{sessionID}_{unix}.jsonl
func New(dir, sessionID string, logger zerolog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create records dir: %w", err)
	}

	filename := fmt.Sprintf("game_%s_%d.jsonl", sessionID, time.Now().Unix())
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	r := &Recorder{
		path:       path,
		file:       f,
		writer:     bufio.NewWriter(f),
		recordChan: make(chan StepRecord, 1000),
		log:        logger.With().Str("record", path).Logger(),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r, nil
}

// Path returns the file being written.
func (r *Recorder) Path() string { return r.path }

// Record queues a frame. It never blocks: frames are dropped when the
// writer falls behind. Its signature matches session observers.
func (r *Recorder) Record(st game.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	rec := StepRecord{Seq: r.seq, Time: time.Now(), State: st.Snapshot()}
	r.seq++

	select {
	case r.recordChan <- rec:
	default:
		r.dropped++
	}
}

// Close flushes the buffer and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.recordChan)
	dropped := r.dropped
	r.mu.Unlock()

	r.wg.Wait()
	if dropped > 0 {
		r.log.Warn().Int("dropped", dropped).Msg("recorder dropped frames")
	}
	return r.file.Close()
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	encoder := json.NewEncoder(r.writer)
	for rec := range r.recordChan {
		if err := encoder.Encode(rec); err != nil {
			r.log.Error().Err(err).Int("seq", rec.Seq).Msg("error recording frame")
		}
	}
	if err := r.writer.Flush(); err != nil {
		r.log.Error().Err(err).Msg("error flushing recording")
	}
}

// ReadFile loads every frame of a recording. Blank lines are skipped.
func ReadFile(path string) ([]StepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []StepRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec StepRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
